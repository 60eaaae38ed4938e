package codec

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	apperrors "github.com/kgoto/aliasearch/pkg/errors"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	docs := map[string][]string{
		"kirin": {"beer", "きりん"},
		"asahi": {},
	}
	buf, err := Encode(docs, 2)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, n, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != 2 {
		t.Errorf("nDocs = %d, want 2", n)
	}
	if !reflect.DeepEqual(got, docs) {
		t.Errorf("documents = %v, want %v", got, docs)
	}
}

func TestDecodeEmptySnapshot(t *testing.T) {
	buf, err := Encode(map[string][]string{}, 0)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, n, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != 0 || len(got) != 0 {
		t.Errorf("Decode empty = (%v, %d), want empty map and 0", got, n)
	}
}

func TestDecodeMigratesLegacy(t *testing.T) {
	docs := map[string][]string{"kirin": {"beer"}}
	buf, err := EncodeLegacy(
		map[string][]string{"ki": {"kirin"}},
		map[string]int{"kirin": 2},
		docs, 1, 1.2, 0.75,
	)
	if err != nil {
		t.Fatalf("EncodeLegacy: %v", err)
	}

	got, n, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode legacy: %v", err)
	}
	if n != 1 {
		t.Errorf("nDocs = %d, want 1", n)
	}
	if !reflect.DeepEqual(got, docs) {
		t.Errorf("documents = %v, want %v", got, docs)
	}
}

func TestDecodeHeaderValidation(t *testing.T) {
	good, err := Encode(map[string][]string{"a": nil}, 1)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	corrupt := func(mutate func(buf []byte)) []byte {
		buf := make([]byte, len(good))
		copy(buf, good)
		mutate(buf)
		return buf
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"truncated header", good[:8]},
		{"bad magic", corrupt(func(b []byte) { binary.LittleEndian.PutUint32(b[0:4], 0xDEADBEEF) })},
		{"unknown version", corrupt(func(b []byte) { binary.LittleEndian.PutUint32(b[4:8], 99) })},
		{"payload flipped", corrupt(func(b []byte) { b[len(b)-1] ^= 0xFF })},
		{"size mismatch", corrupt(func(b []byte) { binary.LittleEndian.PutUint32(b[12:16], 3) })},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data)
			if err == nil {
				t.Fatal("Decode succeeded on corrupt input")
			}
			if !errors.Is(err, apperrors.ErrDecodeFailure) {
				t.Errorf("error %v does not wrap ErrDecodeFailure", err)
			}
		})
	}
}

func TestDecodeErrorMentionsBothSchemas(t *testing.T) {
	_, _, err := Decode([]byte("not a snapshot at all"))
	if err == nil {
		t.Fatal("Decode succeeded on garbage")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %T is not an AppError", err)
	}
}
