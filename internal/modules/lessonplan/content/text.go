package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Text is a loosely typed model field. Strings are kept verbatim, lists are
// joined with newlines, objects become "key: value" lines in document order,
// and numbers and booleans keep their JSON spelling. Null and absent fields
// leave Set false.
type Text struct {
	Value string
	Set   bool
}

func T(v string) Text { return Text{Value: v, Set: true} }

// Or returns the value when the field was present, def otherwise.
func (t Text) Or(def string) string {
	if !t.Set {
		return def
	}
	return t.Value
}

func (t *Text) UnmarshalJSON(b []byte) error {
	v, ok, err := flatten(b)
	if err != nil {
		return err
	}
	*t = Text{Value: v, Set: ok}
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Set {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

func flatten(raw []byte) (string, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return "", false, err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			s, ok, err := flatten(item)
			if err != nil {
				return "", false, err
			}
			if ok && s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n"), true, nil
	case '{':
		return flattenObject(raw)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return "", false, err
		}
		return fmt.Sprint(b), true, nil
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", false, err
		}
		return n.String(), true, nil
	}
}

func flattenObject(raw []byte) (string, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return "", false, err
	}
	var lines []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", false, err
		}
		key, _ := tok.(string)
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return "", false, err
		}
		s, ok, err := flatten(val)
		if err != nil {
			return "", false, err
		}
		if ok && s != "" {
			lines = append(lines, key+": "+s)
		}
	}
	return strings.Join(lines, "\n"), true, nil
}
