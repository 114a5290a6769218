package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertRequest_JSON(t *testing.T) {
	req := InsertRequest{
		Info:    NewInfo("r1").WithHost("node-1"),
		Records: []Record{{Name: "a.bin", Hash: "h1"}},
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"info":{"id":"r1","host":"node-1","timestamp":null},"records":[{"name":"a.bin","hash":"h1"}]}`, string(data))

	var back InsertRequest
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "r1", back.Info.ID)
	require.NotNil(t, back.Info.Host)
	assert.Equal(t, "node-1", *back.Info.Host)
	assert.Nil(t, back.Info.Timestamp)
	assert.Equal(t, req.Records, back.Records)
}

func TestRecord_LegacyObjectKey(t *testing.T) {
	var req InsertRequest
	err := json.Unmarshal([]byte(`{"info":{"id":"old","host":null,"timestamp":"2021-01-01"},"records":[{"object":"a.bin","hash":"h1"}]}`), &req)
	require.NoError(t, err)

	require.Len(t, req.Records, 1)
	assert.Equal(t, Record{Name: "a.bin", Hash: "h1"}, req.Records[0])
	require.NotNil(t, req.Info.Timestamp)
	assert.Equal(t, "2021-01-01", *req.Info.Timestamp)
}

func TestRecord_NamePreferredOverObject(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"name":"new","object":"old","hash":"h"}`), &r))
	assert.Equal(t, "new", r.Name)
}

func TestInsertRequest_RequiredFields(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty object", `{}`, ErrMissingInfo},
		{"unrelated keys", `{"unrelated":1}`, ErrMissingInfo},
		{"null info", `{"info":null,"records":[]}`, ErrMissingInfo},
		{"no id", `{"info":{"host":"h"},"records":[]}`, ErrMissingID},
		{"no records", `{"info":{"id":"r1"}}`, ErrMissingRecords},
		{"null records", `{"info":{"id":"r1"},"records":null}`, ErrMissingRecords},
		{"record without hash", `{"info":{"id":"r1"},"records":[{"name":"a"}]}`, ErrMissingHash},
		{"record without name", `{"info":{"id":"r1"},"records":[{"hash":"h"}]}`, ErrMissingName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req InsertRequest
			assert.ErrorIs(t, json.Unmarshal([]byte(tt.data), &req), tt.want)
		})
	}
}

func TestInsertRequest_EmptyRecords(t *testing.T) {
	var req InsertRequest
	require.NoError(t, json.Unmarshal([]byte(`{"info":{"id":""},"records":[]}`), &req))
	assert.Equal(t, "", req.Info.ID)
	assert.NotNil(t, req.Records)
	assert.NoError(t, req.Validate())

	assert.ErrorIs(t, InsertRequest{}.Validate(), ErrMissingRecords)
}

func TestLookupResponse_IDs(t *testing.T) {
	resp := LookupResponse{Records: []Info{NewInfo("a"), NewInfo("b")}}
	assert.Equal(t, []string{"a", "b"}, resp.IDs())
}
