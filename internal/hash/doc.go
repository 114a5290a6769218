// Package hash derives the 64-bit identifiers used as map keys and file names
// throughout hast.
//
// # Identifiers
//
// An identifier is SipHash-1-3 with an all-zero key over the UTF-8 bytes of a
// string followed by a single 0xff terminator byte:
//
//	id := hash.ID("report-1")
//	name := hash.String(id) // decimal, used as the persisted file name
//
// The same string always yields the same identifier, across processes and
// platforms. Distinct strings can collide; callers that need exact identity
// must keep the original string next to the identifier.
//
// # SipHash
//
// Sum64 exposes the keyed SipHash-c-d core with configurable round counts, so
// the same code serves SipHash-1-3 (identifiers) and SipHash-2-4 (reference
// test vectors).
package hash
