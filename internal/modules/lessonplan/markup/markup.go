// Package markup splits lesson text into styled spans.
//
// Two inline markers are recognised: '^' raises the token that follows it to
// superscript and '_' lowers it to subscript. A token is either a number,
// optionally negative ("2", "12", "-3"), or a run of ASCII letters and digits
// that starts with a letter ("th", "n1"). A number token ends at the first
// non-digit, so "H_2O" lowers only the 2. A marker that is not followed by a
// token is ordinary text and scanning resumes right after it.
package markup

import "strings"

type Style int

const (
	Normal Style = iota
	Superscript
	Subscript
)

func (s Style) String() string {
	switch s {
	case Superscript:
		return "superscript"
	case Subscript:
		return "subscript"
	default:
		return "normal"
	}
}

type Span struct {
	Text  string
	Style Style
}

const (
	superMarker = '^'
	subMarker   = '_'
)

// Parse scans text once, left to right. Literal text between script tokens is
// coalesced into a single Normal span; empty Normal spans are never produced.
func Parse(text string) []Span {
	if text == "" {
		return nil
	}

	var (
		spans   []Span
		literal strings.Builder
	)
	flush := func() {
		if literal.Len() > 0 {
			spans = append(spans, Span{Text: literal.String(), Style: Normal})
			literal.Reset()
		}
	}

	i := 0
	for i < len(text) {
		c := text[i]
		style, isMarker := markerStyle(c)
		if !isMarker {
			literal.WriteByte(c)
			i++
			continue
		}

		end := scanToken(text, i+1)
		if end == i+1 {
			// lone marker
			literal.WriteByte(c)
			i++
			continue
		}

		flush()
		spans = append(spans, Span{Text: text[i+1 : end], Style: style})
		i = end
	}
	flush()
	return spans
}

// Plain concatenates span texts, dropping styling.
func Plain(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

func markerStyle(c byte) (Style, bool) {
	switch c {
	case superMarker:
		return Superscript, true
	case subMarker:
		return Subscript, true
	default:
		return Normal, false
	}
}

// scanToken returns the index just past the token starting at start, or start
// when no token begins there.
func scanToken(text string, start int) int {
	j := start
	if j < len(text) && isLetter(text[j]) {
		for j < len(text) && (isLetter(text[j]) || isDigit(text[j])) {
			j++
		}
		return j
	}
	if j < len(text) && text[j] == '-' {
		j++
	}
	digits := j
	for j < len(text) && isDigit(text[j]) {
		j++
	}
	if j == digits {
		return start
	}
	return j
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
