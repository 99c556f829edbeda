package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const hashLen = 12

// redactor rewrites key/value pairs before they reach zap: secrets are
// replaced, signatory names are hashed so requests stay correlatable.
type redactor struct {
	enabled bool
	salt    string
}

func (r redactor) apply(kv []interface{}) []interface{} {
	if !r.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := toString(kv[i])
		out = append(out, key, r.value(normalizeKey(key), kv[i+1]))
	}
	return out
}

func (r redactor) value(key string, val interface{}) interface{} {
	switch classify(key) {
	case keySecret:
		return "[REDACTED]"
	case keyPerson:
		return r.hash(val)
	}
	if m, ok := val.(map[string]interface{}); ok {
		out := make(map[string]interface{}, len(m))
		for k, inner := range m {
			out[k] = r.value(normalizeKey(k), inner)
		}
		return out
	}
	return val
}

func (r redactor) hash(val interface{}) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:hashLen]
}

type keyClass int

const (
	keyPlain keyClass = iota
	keySecret
	keyPerson
)

var (
	secretFragments = []string{"token", "authorization", "password", "secret", "api_key", "apikey"}
	personFragments = []string{"teacher_name", "principal_name"}
)

func classify(key string) keyClass {
	if key == "" {
		return keyPlain
	}
	for _, f := range secretFragments {
		if strings.Contains(key, f) {
			return keySecret
		}
	}
	for _, f := range personFragments {
		if strings.Contains(key, f) {
			return keyPerson
		}
	}
	return keyPlain
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
