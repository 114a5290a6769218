package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Errors returned when decoding a report that lacks a required field.
var (
	ErrMissingInfo    = errors.New("model: missing info")
	ErrMissingID      = errors.New("model: missing info.id")
	ErrMissingRecords = errors.New("model: missing records")
	ErrMissingHash    = errors.New("model: record without hash")
	ErrMissingName    = errors.New("model: record without name")
)

// Info is the metadata of a report. Two Infos denote the same report when
// their IDs are equal.
type Info struct {
	ID        string  `json:"id"`
	Host      *string `json:"host"`
	Timestamp *string `json:"timestamp"`
}

// UnmarshalJSON requires the id key. Host and timestamp may be absent or null.
func (i *Info) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        *string `json:"id"`
		Host      *string `json:"host"`
		Timestamp *string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.ID == nil {
		return ErrMissingID
	}

	*i = Info{ID: *raw.ID, Host: raw.Host, Timestamp: raw.Timestamp}
	return nil
}

// NewInfo returns an Info with only the ID set.
func NewInfo(id string) Info {
	return Info{ID: id}
}

// WithHost returns a copy of i with Host set.
func (i Info) WithHost(host string) Info {
	i.Host = &host
	return i
}

// WithTimestamp returns a copy of i with Timestamp set.
func (i Info) WithTimestamp(ts string) Info {
	i.Timestamp = &ts
	return i
}

// String returns a string representation of the Info.
func (i Info) String() string {
	return fmt.Sprintf("Info(%s)", i.ID)
}

// Record associates an object name with a content hash.
type Record struct {
	Name string `json:"name"`
	Hash string `json:"hash"`
}

// UnmarshalJSON accepts the legacy "object" key in place of "name". The
// hash and one of the two name keys are required.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name   *string `json:"name"`
		Object *string `json:"object"`
		Hash   *string `json:"hash"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Hash == nil {
		return ErrMissingHash
	}

	r.Hash = *raw.Hash
	switch {
	case raw.Name != nil:
		r.Name = *raw.Name
	case raw.Object != nil:
		r.Name = *raw.Object
	default:
		return ErrMissingName
	}
	return nil
}

// InsertRequest is a report submission. It is also the on-disk format of a
// persisted report.
type InsertRequest struct {
	Info    Info     `json:"info"`
	Records []Record `json:"records"`
}

// UnmarshalJSON requires both the info object and the records array. An
// empty array is valid; null is not.
func (r *InsertRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Info    *Info     `json:"info"`
		Records *[]Record `json:"records"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Info == nil {
		return ErrMissingInfo
	}
	if raw.Records == nil {
		return ErrMissingRecords
	}

	r.Info = *raw.Info
	r.Records = *raw.Records
	if r.Records == nil {
		r.Records = []Record{}
	}
	return nil
}

// Validate reports whether r has the shape of a decoded report. It catches
// decoders that leave r untouched on a top-level null.
func (r InsertRequest) Validate() error {
	if r.Records == nil {
		return ErrMissingRecords
	}
	return nil
}

// LookupRequest asks for the reports referencing any of Hashes.
type LookupRequest struct {
	Hashes []string `json:"hashes"`
}

// LookupResponse lists the matching reports, each at most once.
type LookupResponse struct {
	Records []Info `json:"records"`
}

// IDs returns the report IDs of the response in order.
func (r *LookupResponse) IDs() []string {
	ids := make([]string, len(r.Records))
	for i, info := range r.Records {
		ids[i] = info.ID
	}
	return ids
}
