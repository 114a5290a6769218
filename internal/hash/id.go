package hash

import "strconv"

// strTerminator is appended to every string before hashing so that the
// identifiers match those of the original hast service.
const strTerminator = 0xff

// ID returns the identifier of s.
func ID(s string) uint64 {
	d := newDigest(0, 0, 1, 3)
	d.writeString(s)
	d.write([]byte{strTerminator})
	return d.sum64()
}

// String formats id as the decimal string used for file names.
func String(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// Parse is the inverse of String.
func Parse(name string) (uint64, bool) {
	id, err := strconv.ParseUint(name, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
