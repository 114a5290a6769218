// Package payload decodes the line-oriented record listing carried by insert
// requests.
//
// A listing is UTF-8 text with one record per line, the content hash first
// and the object name after the first space:
//
//	3a7bd3e2360a3d29eea436fcfb7e44c735d117c4 /usr/bin/env
//
// Both parts are trimmed. Lines without a space are ignored. Over the wire
// the listing is base64-encoded.
package payload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/hupe1980/hast/model"
)

var (
	// ErrBase64 is returned when the payload is not valid base64.
	ErrBase64 = errors.New("payload is not valid base64")

	// ErrUTF8 is returned when the decoded listing is not valid UTF-8.
	ErrUTF8 = errors.New("payload is not valid UTF-8")
)

// Payload is the wire form of a listing.
type Payload struct {
	Data string `json:"data"`
}

// Decode base64-decodes p and parses the listing.
func (p Payload) Decode() ([]model.Record, error) {
	raw, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBase64, err)
	}
	return ParseBytes(raw)
}

// Encode returns the wire form of records, one "hash name" line each.
func Encode(records []model.Record) Payload {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(r.Hash)
		b.WriteByte(' ')
		b.WriteString(r.Name)
		b.WriteByte('\n')
	}
	return Payload{Data: base64.StdEncoding.EncodeToString([]byte(b.String()))}
}

// ParseBytes validates raw as UTF-8 and parses it.
func ParseBytes(raw []byte) ([]model.Record, error) {
	if !utf8.Valid(raw) {
		return nil, ErrUTF8
	}
	return Parse(string(raw)), nil
}

// Read parses a listing from r.
func Read(r io.Reader) ([]model.Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read listing: %w", err)
	}
	return ParseBytes(raw)
}

// Parse parses a listing. Records keep the order of their lines.
func Parse(text string) []model.Record {
	var records []model.Record
	for line := range strings.Lines(text) {
		hash, name, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		records = append(records, model.Record{
			Hash: strings.TrimSpace(hash),
			Name: strings.TrimSpace(name),
		})
	}
	return records
}
