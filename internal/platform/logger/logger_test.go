package logger

import (
	"strings"
	"testing"
)

func TestRedactorRedactsSecretsAndHashesNames(t *testing.T) {
	r := redactor{enabled: true}
	out := r.apply([]interface{}{
		"openai_api_key", "sk-live",
		"teacher_name", "JUAN DELA CRUZ",
		"subject", "Mathematics",
		"headers", map[string]interface{}{"Authorization": "Bearer x", "accept": "json"},
	})
	if len(out) != 8 {
		t.Fatalf("len: want=8 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("api key: want redacted, got=%v", out[1])
	}
	hashed, ok := out[3].(string)
	if !ok || len(hashed) != len("hash:")+hashLen || !strings.HasPrefix(hashed, "hash:") {
		t.Fatalf("teacher_name: want hash, got=%v", out[3])
	}
	if out[5] != "Mathematics" {
		t.Fatalf("subject: want passthrough, got=%v", out[5])
	}
	headers := out[7].(map[string]interface{})
	if headers["Authorization"] != "[REDACTED]" || headers["accept"] != "json" {
		t.Fatalf("nested map: %#v", headers)
	}
}

func TestRedactorSaltChangesHash(t *testing.T) {
	a := redactor{enabled: true}.hash("Ana")
	b := redactor{enabled: true, salt: "pepper"}.hash("Ana")
	if a == b {
		t.Fatalf("salt should change the hash")
	}
	if a != (redactor{enabled: true}).hash("Ana") {
		t.Fatalf("hash must be stable")
	}
}

func TestRedactorDisabledPassesThrough(t *testing.T) {
	in := []interface{}{"api_key", "sk"}
	out := redactor{}.apply(in)
	if out[1] != "sk" {
		t.Fatalf("disabled redactor changed value: %v", out[1])
	}
}

func TestRedactorOddLength(t *testing.T) {
	out := redactor{enabled: true}.apply([]interface{}{"subject", "Science", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %#v", out)
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_REDACTION_ENABLED", "off")
	opts := OptionsFromEnv()
	if opts.Level != "warn" || opts.Redact {
		t.Fatalf("options: %+v", opts)
	}
}

func TestNewWithOptionsRejectsBadLevel(t *testing.T) {
	if _, err := NewWithOptions("development", Options{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	log, err := NewWithOptions("production", Options{Level: "error", Redact: true})
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}
	log.With("service", "test").Info("dropped below error level")
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.With("service", "test").Info("hello", "k", "v")
	log.Sync()
}
