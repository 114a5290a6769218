// Package recordset implements the in-memory reverse index of hast.
//
// A RecordSet stores the metadata of every report once, interns object names
// and content hashes into 64-bit identifiers, and links each hash identifier
// to the reports and names it was seen with:
//
//	reports:        report id  -> Info
//	hash_to_report: hash id    -> {report id}
//	hash_to_name:   hash id    -> {name id}
//
// The sets are 64-bit Roaring bitmaps. The structure is insert-only: a report
// is indexed on its first insert and never changed afterwards.
//
// A RecordSet is not safe for concurrent use. The storage layer guards it
// with a single lock.
package recordset
