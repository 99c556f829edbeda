package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNoJSONObject = errors.New("reply contains no JSON object")

// StripCodeFences removes one markdown fence (```json, ```JSON or bare ```)
// opening the reply and one closing it. Backticks inside the payload are kept.
func StripCodeFences(text string) string {
	const fence = "```"
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, fence) {
		text = text[len(fence):]
		// language tag
		j := 0
		for j < len(text) && isASCIILetter(text[j]) {
			j++
		}
		text = text[j:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), fence)
	return strings.TrimSpace(text)
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Decode parses a model reply into Raw. Text around the outermost JSON object
// is ignored; anything that still does not parse as an object is an error.
func Decode(reply string) (Raw, error) {
	text := StripCodeFences(reply)
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return Raw{}, errNoJSONObject
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text[start : end+1])))
	var raw Raw
	if err := dec.Decode(&raw); err != nil {
		return Raw{}, fmt.Errorf("parse model JSON: %w", err)
	}
	return raw, nil
}
