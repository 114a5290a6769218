// Package model defines the report types shared by the index, the storage
// layer and the transports.
//
// # Types
//
//   - Info: report metadata, identified by its ID
//   - Record: one (object name, content hash) pair of a report
//   - InsertRequest: a report with its records, also the persisted file format
//   - LookupRequest / LookupResponse: hash queries and their matches
//
// Persisted reports look like:
//
//	{"info":{"id":"r1","host":null,"timestamp":null},"records":[{"name":"a.bin","hash":"h1"}]}
package model
