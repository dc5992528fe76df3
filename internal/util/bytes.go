package util

// CopyBytes returns a fresh copy of src.
func CopyBytes(src []byte) []byte {
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}

// WipeBytes best-effort zeroes the provided byte slice in place.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// AppendLenPrefix appends data to b preceded by its 4-byte big-endian length.
// Length-prefixing keeps concatenated fields unambiguous regardless of content.
func AppendLenPrefix(b, data []byte) []byte {
	l := uint32(len(data))
	b = append(b, byte(l>>24), byte(l>>16), byte(l>>8), byte(l))
	return append(b, data...)
}
