// Package codec serialises the document store into a compact versioned
// binary form and decodes it back, recognising one legacy schema for
// migration. The framing follows a fixed little-endian header (magic,
// version, payload length, CRC32 of the payload) around a JSON payload;
// derived structures (postings, caches) are never serialised.
package codec

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"net/http"

	apperrors "github.com/kgoto/aliasearch/pkg/errors"
)

const (
	// Magic identifies an aliasearch snapshot buffer ("ALSX").
	Magic uint32 = 0x414C5358

	// CurrentVersion is the schema written by Encode.
	CurrentVersion uint32 = 2
	// LegacyVersion is the only older schema recognised for migration.
	LegacyVersion uint32 = 1

	headerSize = 16
)

// currentPayload is the version-2 schema: just the authoritative store.
type currentPayload struct {
	Documents map[string][]string `json:"documents"`
	NDocs     int                 `json:"n_docs"`
}

// legacyPayload is the version-1 schema from the postings-serialising
// generation of the engine. Only Documents and NDocs survive migration;
// postings, lengths, and the ranking parameters are rebuilt or discarded.
type legacyPayload struct {
	Postings  map[string][]string `json:"postings"`
	DocLen    map[string]int      `json:"doc_len"`
	Documents map[string][]string `json:"doc_aliases"`
	NDocs     int                 `json:"n_docs"`
	K1        float64             `json:"k1"`
	B         float64             `json:"b"`
}

// Encode serialises the document store and its count under the current
// schema version.
func Encode(docs map[string][]string, nDocs int) ([]byte, error) {
	payload, err := json.Marshal(currentPayload{Documents: docs, NDocs: nDocs})
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot payload: %w", err)
	}
	return frame(CurrentVersion, payload), nil
}

// EncodeLegacy serialises a buffer under the legacy schema. It exists for
// migration tooling and tests; production dumps always use Encode.
func EncodeLegacy(postings map[string][]string, docLen map[string]int, docs map[string][]string, nDocs int, k1, b float64) ([]byte, error) {
	payload, err := json.Marshal(legacyPayload{
		Postings:  postings,
		DocLen:    docLen,
		Documents: docs,
		NDocs:     nDocs,
		K1:        k1,
		B:         b,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding legacy payload: %w", err)
	}
	return frame(LegacyVersion, payload), nil
}

func frame(version uint32, payload []byte) []byte {
	buf := make([]byte, headerSize+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint32(buf[4:8], version)
	binary.LittleEndian.PutUint32(buf[8:12], crc32.ChecksumIEEE(payload))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(payload)))
	copy(buf[headerSize:], payload)
	return buf
}

// Decode attempts the current schema first and falls back to the legacy
// schema, migrating it by keeping only the document store and count. When
// neither applies, the returned error carries both decode messages.
func Decode(data []byte) (map[string][]string, int, error) {
	docs, nDocs, errCurrent := decodeVersion(data, CurrentVersion)
	if errCurrent == nil {
		return docs, nDocs, nil
	}
	docs, nDocs, errLegacy := decodeLegacy(data)
	if errLegacy == nil {
		return docs, nDocs, nil
	}
	return nil, 0, apperrors.Newf(apperrors.ErrDecodeFailure, http.StatusBadRequest,
		"current schema: %v; legacy schema: %v", errCurrent, errLegacy)
}

func payloadFor(data []byte, version uint32) ([]byte, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("buffer too short: %d bytes", len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != Magic {
		return nil, fmt.Errorf("bad magic bytes %#x", magic)
	}
	if got := binary.LittleEndian.Uint32(data[4:8]); got != version {
		return nil, fmt.Errorf("version %d, want %d", got, version)
	}
	size := int(binary.LittleEndian.Uint32(data[12:16]))
	if len(data)-headerSize != size {
		return nil, fmt.Errorf("payload size mismatch: header says %d, have %d", size, len(data)-headerSize)
	}
	payload := data[headerSize:]
	if sum := crc32.ChecksumIEEE(payload); sum != binary.LittleEndian.Uint32(data[8:12]) {
		return nil, fmt.Errorf("payload checksum mismatch")
	}
	return payload, nil
}

func decodeVersion(data []byte, version uint32) (map[string][]string, int, error) {
	payload, err := payloadFor(data, version)
	if err != nil {
		return nil, 0, err
	}
	var p currentPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, 0, fmt.Errorf("parsing payload: %w", err)
	}
	if p.Documents == nil {
		p.Documents = make(map[string][]string)
	}
	return p.Documents, p.NDocs, nil
}

func decodeLegacy(data []byte) (map[string][]string, int, error) {
	payload, err := payloadFor(data, LegacyVersion)
	if err != nil {
		return nil, 0, err
	}
	var p legacyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, 0, fmt.Errorf("parsing payload: %w", err)
	}
	if p.Documents == nil {
		p.Documents = make(map[string][]string)
	}
	return p.Documents, p.NDocs, nil
}
