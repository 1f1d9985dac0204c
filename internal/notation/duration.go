package notation

// DefaultDuration is the code a new riff starts with (quarter note)
const DefaultDuration = "4s"

const defaultBeats = 1.0

// DurationCode is one entry of the duration table
type DurationCode struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Beats float64 `json:"beats"`
}

var durationTable = []DurationCode{
	{Code: "1s", Name: "whole", Beats: 4},
	{Code: "2", Name: "half", Beats: 2},
	{Code: "4s", Name: "quarter", Beats: 1},
	{Code: "8s", Name: "eighth", Beats: 0.5},
	{Code: "16s", Name: "sixteenth", Beats: 0.25},
	{Code: "32s", Name: "thirty-second", Beats: 0.125},
}

var beatsByCode = func() map[string]float64 {
	m := make(map[string]float64, len(durationTable)*2)
	for _, d := range durationTable {
		m[d.Code] = d.Beats
		m[d.Name] = d.Beats
	}
	return m
}()

// BeatLength returns the length in beats for a duration code.
// Unknown codes fall back to a quarter note; this never fails so that
// documents written by newer or older versions still load.
func BeatLength(code string) float64 {
	if b, ok := beatsByCode[code]; ok {
		return b
	}
	return defaultBeats
}

// DurationCodes lists the canonical codes from longest to shortest
func DurationCodes() []DurationCode {
	out := make([]DurationCode, len(durationTable))
	copy(out, durationTable)
	return out
}
