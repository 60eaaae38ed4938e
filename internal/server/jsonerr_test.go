package server

import (
	"strings"
	"testing"
)

func TestDecodeJSONValid(t *testing.T) {
	var v map[string]int
	if err := decodeJSON([]byte(`{"a":1}`), &v); err != nil {
		t.Fatalf("decodeJSON: %v", err)
	}
	if v["a"] != 1 {
		t.Errorf("decoded %v", v)
	}
}

func TestDecodeJSONSyntaxErrorPosition(t *testing.T) {
	body := []byte("{\n  \"a\": 1,\n  \"b\": ,\n}")
	err := decodeJSON(body, &map[string]interface{}{})
	if err == nil {
		t.Fatal("decodeJSON accepted malformed input")
	}
	msg := err.Error()
	if !strings.Contains(msg, "line 3") {
		t.Errorf("error %q does not point at line 3", msg)
	}
	if !strings.Contains(msg, "Context: '") {
		t.Errorf("error %q carries no context window", msg)
	}
}

func TestDecodeJSONTypeErrorPosition(t *testing.T) {
	var v struct {
		N int `json:"n"`
	}
	err := decodeJSON([]byte(`{"n": "not a number"}`), &v)
	if err == nil {
		t.Fatal("decodeJSON accepted mistyped input")
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("error %q does not report a position", err)
	}
}

func TestLineCol(t *testing.T) {
	body := []byte("ab\ncd\nef")
	tests := []struct {
		offset    int64
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{7, 3, 2},
	}
	for _, tt := range tests {
		line, col := lineCol(body, tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("lineCol(%d) = (%d,%d), want (%d,%d)", tt.offset, line, col, tt.line, tt.col)
		}
	}
}

func TestWindowClamped(t *testing.T) {
	body := []byte("short")
	if got := window(body, 2); got != "short" {
		t.Errorf("window = %q, want the whole input", got)
	}
	long := []byte(strings.Repeat("x", 100))
	if got := window(long, 50); len(got) != 2*contextWindow {
		t.Errorf("window length = %d, want %d", len(got), 2*contextWindow)
	}
}
