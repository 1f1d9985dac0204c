package notation

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind tags a token with the shape decided at parse time
type Kind int

const (
	KindInvalid Kind = iota
	KindRest
	KindSingle
	KindChord
	KindDrum
)

func (k Kind) String() string {
	switch k {
	case KindRest:
		return "rest"
	case KindSingle:
		return "single"
	case KindChord:
		return "chord"
	case KindDrum:
		return "drum"
	default:
		return "invalid"
	}
}

// Accidental is the optional modifier written right after a note letter
type Accidental int

const (
	Natural Accidental = iota
	Sharp
	Flat
)

// Symbol returns the accidental as drawn next to a note head
func (a Accidental) Symbol() string {
	switch a {
	case Sharp:
		return "#"
	case Flat:
		return "b"
	default:
		return ""
	}
}

const (
	// ChordSeparator joins the members of a chord
	ChordSeparator = "+"
	restText       = "R"
)

// Note is a single pitched letter or drum hit
type Note struct {
	Letter     byte       `json:"letter"`
	Accidental Accidental `json:"accidental"`
	Drum       bool       `json:"drum"`
}

// Token is one whitespace-separated element of a phrase.
// Text keeps the element exactly as written so phrases survive a re-join.
type Token struct {
	Kind  Kind
	Text  string
	Notes []Note
	Err   *GrammarError
}

func (t Token) String() string { return t.Text }

// IsChord reports whether the token sounds more than one note at once
func (t Token) IsChord() bool { return t.Kind == KindChord }

// GrammarError names an element that the grammar could not read
type GrammarError struct {
	Element string
	Reason  string
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("invalid element %q: %s", e.Element, e.Reason)
}

// PhraseError collects every grammar error found in a phrase
type PhraseError struct {
	Errors []*GrammarError
}

func (e *PhraseError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		parts = append(parts, ge.Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the individual grammar errors to errors.As
func (e *PhraseError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, ge := range e.Errors {
		errs = append(errs, ge)
	}
	return errs
}

// ParseOptions tunes how forgiving the grammar is.
// Strict rejects anything after the letter that is not a single accidental.
type ParseOptions struct {
	Strict bool
}

// ParsePhrase splits text on whitespace and parses each element on its own.
// Invalid elements still produce a token (KindInvalid) and are reported
// together in the returned *PhraseError.
func ParsePhrase(text string) ([]Token, error) {
	return ParsePhraseWith(text, ParseOptions{})
}

// ParsePhraseWith is ParsePhrase with explicit options
func ParsePhraseWith(text string, opts ParseOptions) ([]Token, error) {
	return ParseElementsWith(strings.Fields(text), opts)
}

// ParseElements parses elements that were already split, as stored in a
// saved riff's notes list.
func ParseElements(elements []string) ([]Token, error) {
	return ParseElementsWith(elements, ParseOptions{})
}

// ParseElementsWith is ParseElements with explicit options
func ParseElementsWith(elements []string, opts ParseOptions) ([]Token, error) {
	tokens := make([]Token, 0, len(elements))
	var perr *PhraseError
	for _, el := range elements {
		tok := ParseTokenWith(el, opts)
		if tok.Err != nil {
			if perr == nil {
				perr = &PhraseError{}
			}
			perr.Errors = append(perr.Errors, tok.Err)
		}
		tokens = append(tokens, tok)
	}
	if perr != nil {
		return tokens, perr
	}
	return tokens, nil
}

// ParseToken parses a single element in lenient mode
func ParseToken(element string) Token {
	return ParseTokenWith(element, ParseOptions{})
}

// ParseTokenWith parses a single element
func ParseTokenWith(element string, opts ParseOptions) Token {
	tok := Token{Text: element}
	if element == "" {
		tok.Err = &GrammarError{Element: element, Reason: "empty element"}
		return tok
	}
	if strings.ContainsFunc(element, unicode.IsSpace) {
		tok.Err = &GrammarError{Element: element, Reason: "element contains whitespace"}
		return tok
	}
	if strings.EqualFold(element, restText) {
		tok.Kind = KindRest
		return tok
	}

	parts := strings.Split(element, ChordSeparator)
	if len(parts) == 1 {
		n, err := parseNote(element, element, opts)
		if err != nil {
			tok.Err = err
			return tok
		}
		tok.Notes = []Note{n}
		if n.Drum {
			tok.Kind = KindDrum
		} else {
			tok.Kind = KindSingle
		}
		return tok
	}

	notes := make([]Note, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			tok.Err = &GrammarError{Element: element, Reason: "empty chord member"}
			return tok
		}
		if strings.EqualFold(part, restText) {
			tok.Err = &GrammarError{Element: element, Reason: "a rest cannot be a chord member"}
			return tok
		}
		n, err := parseNote(part, element, opts)
		if err != nil {
			return Token{Text: element, Err: err}
		}
		notes = append(notes, n)
	}
	tok.Kind = KindChord
	tok.Notes = notes
	return tok
}

func parseNote(s, element string, opts ParseOptions) (Note, *GrammarError) {
	letter := upper(s[0])
	if _, ok := drumPitch[letter]; ok {
		if opts.Strict && len(s) > 1 {
			return Note{}, &GrammarError{Element: element, Reason: fmt.Sprintf("drum hit %q takes no modifier", s)}
		}
		return Note{Letter: letter, Drum: true}, nil
	}
	if _, ok := letterSemitone[letter]; !ok {
		return Note{}, &GrammarError{Element: element, Reason: fmt.Sprintf("unrecognized note letter %q", string(s[0]))}
	}

	n := Note{Letter: letter}
	if len(s) > 1 {
		acc, ok := accidentalFor(s[1])
		if ok {
			n.Accidental = acc
		} else if opts.Strict {
			return Note{}, &GrammarError{Element: element, Reason: fmt.Sprintf("invalid modifier %q", string(s[1]))}
		}
	}
	if opts.Strict && len(s) > 2 {
		return Note{}, &GrammarError{Element: element, Reason: fmt.Sprintf("note too long: %q", s)}
	}
	return n, nil
}

func accidentalFor(c byte) (Accidental, bool) {
	switch c {
	case '#':
		return Sharp, true
	case 'b', 'B', '%':
		return Flat, true
	}
	return Natural, false
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// Texts returns the written form of each token
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

// JoinPhrase renders tokens back into phrase text
func JoinPhrase(tokens []Token) string {
	return strings.Join(Texts(tokens), " ")
}
