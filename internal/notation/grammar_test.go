package notation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		name    string
		element string
		kind    Kind
		notes   []Note
		wantErr bool
	}{
		{
			name:    "natural note",
			element: "C",
			kind:    KindSingle,
			notes:   []Note{{Letter: 'C'}},
		},
		{
			name:    "lowercase sharp",
			element: "c#",
			kind:    KindSingle,
			notes:   []Note{{Letter: 'C', Accidental: Sharp}},
		},
		{
			name:    "flat",
			element: "Eb",
			kind:    KindSingle,
			notes:   []Note{{Letter: 'E', Accidental: Flat}},
		},
		{
			name:    "percent flat",
			element: "E%",
			kind:    KindSingle,
			notes:   []Note{{Letter: 'E', Accidental: Flat}},
		},
		{
			name:    "lowercase b is a note",
			element: "bb",
			kind:    KindSingle,
			notes:   []Note{{Letter: 'B', Accidental: Flat}},
		},
		{
			name:    "rest",
			element: "r",
			kind:    KindRest,
		},
		{
			name:    "triad",
			element: "C+E+G",
			kind:    KindChord,
			notes:   []Note{{Letter: 'C'}, {Letter: 'E'}, {Letter: 'G'}},
		},
		{
			name:    "drum hit",
			element: "K",
			kind:    KindDrum,
			notes:   []Note{{Letter: 'K', Drum: true}},
		},
		{
			name:    "drum chord",
			element: "K+S",
			kind:    KindChord,
			notes:   []Note{{Letter: 'K', Drum: true}, {Letter: 'S', Drum: true}},
		},
		{
			name:    "unknown letter",
			element: "X",
			wantErr: true,
		},
		{
			name:    "trailing separator",
			element: "C+",
			wantErr: true,
		},
		{
			name:    "leading separator",
			element: "+E",
			wantErr: true,
		},
		{
			name:    "rest inside chord",
			element: "C+R",
			wantErr: true,
		},
		{
			name:    "unknown chord member",
			element: "C+Q",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := ParseToken(tt.element)
			assert.Equal(t, tt.element, tok.String())
			if tt.wantErr {
				require.NotNil(t, tok.Err)
				assert.Equal(t, KindInvalid, tok.Kind)
				assert.Equal(t, tt.element, tok.Err.Element)
				return
			}
			require.Nil(t, tok.Err)
			assert.Equal(t, tt.kind, tok.Kind)
			assert.Equal(t, tt.notes, tok.Notes)
		})
	}
}

func TestParseTokenStrictMode(t *testing.T) {
	tests := []struct {
		element   string
		strictErr bool
	}{
		{element: "C", strictErr: false},
		{element: "C#", strictErr: false},
		{element: "Bb", strictErr: false},
		{element: "Cx", strictErr: true},
		{element: "C#b", strictErr: true},
		{element: "Kb", strictErr: true},
		{element: "C+Ex", strictErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.element, func(t *testing.T) {
			lenient := ParseToken(tt.element)
			assert.Nil(t, lenient.Err, "lenient mode accepts %q", tt.element)

			strict := ParseTokenWith(tt.element, ParseOptions{Strict: true})
			if tt.strictErr {
				assert.NotNil(t, strict.Err)
			} else {
				assert.Nil(t, strict.Err)
			}
		})
	}
}

func TestParsePhraseCollectsEveryError(t *testing.T) {
	tokens, err := ParsePhrase("C X  D  Y+E")
	require.Error(t, err)
	require.Len(t, tokens, 4)

	var perr *PhraseError
	require.True(t, errors.As(err, &perr))
	require.Len(t, perr.Errors, 2)
	assert.Equal(t, "X", perr.Errors[0].Element)
	assert.Equal(t, "Y+E", perr.Errors[1].Element)

	var gerr *GrammarError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "X", gerr.Element)

	assert.Equal(t, KindSingle, tokens[0].Kind)
	assert.Equal(t, KindInvalid, tokens[1].Kind)
	assert.Equal(t, KindSingle, tokens[2].Kind)
}

func TestParsePhraseEmpty(t *testing.T) {
	tokens, err := ParsePhrase("   ")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestParsePhraseRoundTrip(t *testing.T) {
	var elements []string
	for _, c := range ChordLibrary() {
		elements = append(elements, c.Text())
	}
	for _, l := range diatonicLetters {
		elements = append(elements, string(l), string(l)+"#", string(l)+"b")
	}
	elements = append(elements, "R", "r")

	text := strings.Join(elements, " ")
	first, err := ParsePhrase(text)
	require.NoError(t, err)

	second, err := ParsePhrase(JoinPhrase(first))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, elements, Texts(second))
}

func TestParseElementsRejectsWhitespace(t *testing.T) {
	tests := []struct {
		name     string
		elements []string
	}{
		{name: "space between notes", elements: []string{"C E"}},
		{name: "tab between notes", elements: []string{"G\tA"}},
		{name: "trailing newline", elements: []string{"C", "E\n"}},
		{name: "space inside chord", elements: []string{"C+ E"}},
		{name: "padded rest", elements: []string{" R"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, opts := range []ParseOptions{{}, {Strict: true}} {
				tokens, err := ParseElementsWith(tt.elements, opts)
				require.Error(t, err)
				var perr *PhraseError
				require.True(t, errors.As(err, &perr))
				assert.Contains(t, err.Error(), "element contains whitespace")
				assert.Len(t, tokens, len(tt.elements))
			}
		})
	}
}

func TestAcceptedElementsSurviveRejoin(t *testing.T) {
	elements := []string{"C", "E+G", "R", "K", "Bb", "Cx"}
	tokens, err := ParseElements(elements)
	require.NoError(t, err)

	again, err := ParsePhrase(strings.Join(elements, " "))
	require.NoError(t, err)
	assert.Equal(t, tokens, again)

	_, err = ParseElements([]string{"C E", "G\tA"})
	assert.Error(t, err)
}
