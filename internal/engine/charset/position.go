package charset

import "unicode/utf8"

// RuneUTF16Len returns the number of UTF-16 code units r occupies:
// 2 for characters outside the Basic Multilingual Plane, otherwise 1.
func RuneUTF16Len(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}

// UTF16Len counts the UTF-16 code units of s. Invalid bytes count as one
// unit each, matching their U+FFFD replacement.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += RuneUTF16Len(r)
	}
	return n
}

// UTF16LenBytes is UTF16Len for a byte slice.
func UTF16LenBytes(b []byte) int {
	n := 0
	for len(b) > 0 {
		if b[0] < utf8.RuneSelf {
			n++
			b = b[1:]
			continue
		}
		r, size := utf8.DecodeRune(b)
		n += RuneUTF16Len(r)
		b = b[size:]
	}
	return n
}

// IsASCII reports whether every byte of b is below 0x80.
func IsASCII(b []byte) bool {
	for _, c := range b {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// ByteToCharOffset converts a byte offset within UTF-8 text b to a UTF-16
// offset. An offset inside a multi-byte sequence maps to the start of that
// character.
func ByteToCharOffset(b []byte, byteOff int) int {
	byteOff = max(0, min(byteOff, len(b)))
	units := 0
	for pos := 0; pos < byteOff; {
		r, size := utf8.DecodeRune(b[pos:])
		if pos+size > byteOff {
			break
		}
		units += RuneUTF16Len(r)
		pos += size
	}
	return units
}

// CharToByteOffset converts a UTF-16 offset within UTF-8 text b to a byte
// offset. An offset between the halves of a surrogate pair maps to the
// start of that character. Offsets past the end clamp to len(b).
func CharToByteOffset(b []byte, charOff int) int {
	pos, units := 0, 0
	for pos < len(b) && units < charOff {
		r, size := utf8.DecodeRune(b[pos:])
		u := RuneUTF16Len(r)
		if units+u > charOff {
			break
		}
		units += u
		pos += size
	}
	return pos
}
