package handlers

const (
	// Song list paging
	defaultPageSize = 50
	maxPageSize     = 200

	midiContentType = "audio/midi"
	defaultFileName = "song.mid"
)
