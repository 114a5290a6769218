package hash

import (
	"encoding/binary"
	"math/bits"
)

const (
	initV0 = 0x736f6d6570736575
	initV1 = 0x646f72616e646f6d
	initV2 = 0x6c7967656e657261
	initV3 = 0x7465646279746573
)

// digest is a streaming SipHash-c-d state.
type digest struct {
	v0, v1, v2, v3 uint64
	c, d           int

	tail  [8]byte
	ntail int
	total uint64
}

func newDigest(k0, k1 uint64, c, d int) *digest {
	return &digest{
		v0: k0 ^ initV0,
		v1: k1 ^ initV1,
		v2: k0 ^ initV2,
		v3: k1 ^ initV3,
		c:  c,
		d:  d,
	}
}

func (s *digest) rounds(n int) {
	v0, v1, v2, v3 := s.v0, s.v1, s.v2, s.v3
	for i := 0; i < n; i++ {
		v0 += v1
		v1 = bits.RotateLeft64(v1, 13)
		v1 ^= v0
		v0 = bits.RotateLeft64(v0, 32)

		v2 += v3
		v3 = bits.RotateLeft64(v3, 16)
		v3 ^= v2

		v0 += v3
		v3 = bits.RotateLeft64(v3, 21)
		v3 ^= v0

		v2 += v1
		v1 = bits.RotateLeft64(v1, 17)
		v1 ^= v2
		v2 = bits.RotateLeft64(v2, 32)
	}
	s.v0, s.v1, s.v2, s.v3 = v0, v1, v2, v3
}

func (s *digest) block(m uint64) {
	s.v3 ^= m
	s.rounds(s.c)
	s.v0 ^= m
}

func (s *digest) write(p []byte) {
	s.total += uint64(len(p))

	if s.ntail > 0 {
		n := copy(s.tail[s.ntail:], p)
		s.ntail += n
		p = p[n:]
		if s.ntail < 8 {
			return
		}
		s.block(binary.LittleEndian.Uint64(s.tail[:]))
		s.ntail = 0
	}

	for len(p) >= 8 {
		s.block(binary.LittleEndian.Uint64(p))
		p = p[8:]
	}

	s.ntail = copy(s.tail[:], p)
}

func (s *digest) writeString(str string) {
	for len(str) > 0 {
		// Chunked copy keeps the hot path allocation free.
		var buf [64]byte
		n := copy(buf[:], str)
		s.write(buf[:n])
		str = str[n:]
	}
}

func (s *digest) sum64() uint64 {
	b := s.total << 56
	for i := s.ntail - 1; i >= 0; i-- {
		b |= uint64(s.tail[i]) << (8 * uint(i))
	}

	s.block(b)
	s.v2 ^= 0xff
	s.rounds(s.d)

	return s.v0 ^ s.v1 ^ s.v2 ^ s.v3
}

// Sum64 returns the SipHash-c-d of data under the key (k0, k1).
func Sum64(k0, k1 uint64, c, d int, data []byte) uint64 {
	s := newDigest(k0, k1, c, d)
	s.write(data)
	return s.sum64()
}
