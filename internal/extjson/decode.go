// Package extjson decodes seed fixtures written in MongoDB extended JSON.
//
// Tagged values such as {"$oid": "..."} and {"$date": "..."} become
// primitive.ObjectID and primitive.DateTime; canonical and relaxed forms are
// both accepted.
package extjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ps-vitor/sub2lease-seed/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrEmptyInput     = errors.New("extjson: empty input")
	ErrUnsupportedTop = errors.New("extjson: top-level value must be an object or an array")
	ErrInvalidUTF8    = errors.New("extjson: input is not valid UTF-8")
	ErrMalformed      = errors.New("extjson: malformed JSON")
)

// Batch is the decoded content of one fixture file.
type Batch struct {
	Documents []domain.Document
	// Ignored counts array elements that were not objects.
	Ignored int
}

// Decoder turns raw fixture bytes into documents.
type Decoder func(data []byte) (Batch, error)

// Decode is the default Decoder. A top-level object yields a single document,
// an array yields one document per object element, and null yields nothing.
func Decode(data []byte) (Batch, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Batch{}, ErrEmptyInput
	}
	if !utf8.Valid(trimmed) {
		return Batch{}, ErrInvalidUTF8
	}
	// exactly one JSON value; trailing data is rejected
	if !json.Valid(trimmed) {
		return Batch{}, ErrMalformed
	}

	switch trimmed[0] {
	case '{':
		doc, err := decodeDocument(trimmed)
		if err != nil {
			return Batch{}, err
		}
		return Batch{Documents: []domain.Document{doc}}, nil
	case '[':
		return decodeArray(trimmed)
	case 'n':
		if bytes.Equal(trimmed, []byte("null")) {
			return Batch{}, nil
		}
	}
	return Batch{}, ErrUnsupportedTop
}

func decodeArray(data []byte) (Batch, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return Batch{}, fmt.Errorf("extjson: decode array: %w", err)
	}

	batch := Batch{Documents: make([]domain.Document, 0, len(elems))}
	for i, raw := range elems {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			batch.Ignored++
			continue
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return Batch{}, fmt.Errorf("element %d: %w", i, err)
		}
		batch.Documents = append(batch.Documents, doc)
	}
	return batch, nil
}

func decodeDocument(data []byte) (domain.Document, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("extjson: decode document: %w", err)
	}
	return doc, nil
}
