package httpx

import (
	"fmt"
	"strings"
	"testing"
)

func TestStatusCodeUnwraps(t *testing.T) {
	err := fmt.Errorf("fetch image: %w", &StatusError{Service: "imagegen", StatusCode: 502})
	if got := StatusCode(err); got != 502 {
		t.Fatalf("StatusCode: want=502 got=%d", got)
	}
	if got := StatusCode(fmt.Errorf("plain")); got != 0 {
		t.Fatalf("StatusCode plain: want=0 got=%d", got)
	}
}

func TestReadLimited(t *testing.T) {
	if _, err := ReadLimited(strings.NewReader("abcdef"), 3); err == nil {
		t.Fatalf("ReadLimited: expected error for oversized body")
	}
	raw, err := ReadLimited(strings.NewReader("abc"), 3)
	if err != nil || string(raw) != "abc" {
		t.Fatalf("ReadLimited: got=%q err=%v", raw, err)
	}
}

func TestIsSuccess(t *testing.T) {
	if !IsSuccess(200) || !IsSuccess(204) || IsSuccess(301) || IsSuccess(500) {
		t.Fatalf("IsSuccess classification wrong")
	}
}
