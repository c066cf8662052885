package charset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// UTF8 is the encoding the native engine uses for document text.
var UTF8 encoding.Encoding = unicode.UTF8

// ErrUnknownEncoding is returned by Lookup for unsupported encoding names.
var ErrUnknownEncoding = errors.New("unknown encoding")

// maxCharBytes bounds the bytes a single character may occupy in any
// supported encoding.
const maxCharBytes = 4

// Lookup returns the encoding registered under a WHATWG name or label,
// such as "utf-8", "windows-1252" or "shift_jis".
func Lookup(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// Name returns the canonical name of enc, or "utf-8" for nil.
func Name(enc encoding.Encoding) string {
	if enc == nil {
		return "utf-8"
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return "unknown"
	}
	return name
}

// isUTF8 reports whether enc is UTF-8. A nil encoding means UTF-8.
func isUTF8(enc encoding.Encoding) bool {
	if enc == nil || enc == unicode.UTF8 {
		return true
	}
	return Name(enc) == "utf-8"
}

// GetBytes encodes text in enc, optionally appending a single zero byte.
// Characters enc cannot represent are replaced with its substitution byte.
func GetBytes(text string, enc encoding.Encoding, zeroTerminated bool) ([]byte, error) {
	var out []byte
	if isUTF8(enc) {
		out = make([]byte, len(text), len(text)+1)
		copy(out, text)
	} else {
		var err error
		out, err = encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("encoding text as %s: %w", Name(enc), err)
		}
	}
	if zeroTerminated {
		out = append(out, 0)
	}
	return out, nil
}

// GetBytesUTF16 encodes the first length UTF-16 code units of units.
// Unpaired surrogates become U+FFFD.
func GetBytesUTF16(units []uint16, length int, enc encoding.Encoding, zeroTerminated bool) ([]byte, error) {
	length = max(0, min(length, len(units)))
	return GetBytes(string(utf16.Decode(units[:length])), enc, zeroTerminated)
}

// GetString decodes b from enc. Invalid sequences decode to U+FFFD, one
// replacement per undecodable byte for UTF-8.
func GetString(b []byte, enc encoding.Encoding) string {
	if isUTF8(enc) {
		if utf8.Valid(b) {
			return string(b)
		}
		var sb strings.Builder
		sb.Grow(len(b))
		for len(b) > 0 {
			r, size := utf8.DecodeRune(b)
			sb.WriteRune(r)
			b = b[size:]
		}
		return sb.String()
	}
	// Decoders substitute U+FFFD rather than fail.
	out, _ := enc.NewDecoder().Bytes(b)
	return string(out)
}

// CharCount returns the number of UTF-16 code units text decodes to.
func CharCount(text []byte, enc encoding.Encoding) int {
	if isUTF8(enc) {
		return UTF16LenBytes(text)
	}
	return UTF16Len(GetString(text, enc))
}

// ByteToCharStyles converts one style per byte into one style per UTF-16
// code unit. Each character takes the style of its first byte; a character
// outside the BMP yields two entries.
func ByteToCharStyles(styles, text []byte, length int, enc encoding.Encoding) []byte {
	length = max(0, min(length, len(text), len(styles)))
	text = text[:length]

	result := make([]byte, 0, length)
	if isUTF8(enc) {
		for pos := 0; pos < length; {
			r, size := utf8.DecodeRune(text[pos:])
			for n := RuneUTF16Len(r); n > 0; n-- {
				result = append(result, styles[pos])
			}
			pos += size
		}
		return result
	}

	dec := enc.NewDecoder()
	var scratch [32]byte
	for pos := 0; pos < length; {
		units, size := nextChar(dec, text[pos:], scratch[:])
		for ; units > 0; units-- {
			result = append(result, styles[pos])
		}
		pos += size
	}
	return result
}

// CharToByteStyles converts one style per UTF-16 code unit of text into one
// style per encoded byte. Bytes of a character repeat the style of its first
// code unit; characters beyond the end of styles get style 0.
func CharToByteStyles(styles []byte, text string, enc encoding.Encoding) []byte {
	utf := isUTF8(enc)
	var encoder *encoding.Encoder
	if !utf {
		encoder = encoding.ReplaceUnsupported(enc.NewEncoder())
	}

	result := make([]byte, 0, len(text))
	unit := 0
	for pos := 0; pos < len(text); {
		r, size := utf8.DecodeRuneInString(text[pos:])

		var style byte
		if unit < len(styles) {
			style = styles[unit]
		}

		n := size
		if !utf {
			b, err := encoder.String(string(r))
			if err != nil {
				b = "?"
			}
			n = len(b)
		}
		for ; n > 0; n-- {
			result = append(result, style)
		}

		unit += RuneUTF16Len(r)
		pos += size
	}
	return result
}

// nextChar decodes the character at the start of src, returning the UTF-16
// units it produces and the bytes it consumed.
func nextChar(dec *encoding.Decoder, src, dst []byte) (units, size int) {
	for n := 1; n <= len(src) && n <= maxCharBytes; n++ {
		dec.Reset()
		nDst, nSrc, err := dec.Transform(dst, src[:n], n == len(src))
		if errors.Is(err, transform.ErrShortSrc) || nSrc == 0 {
			continue
		}
		return UTF16LenBytes(dst[:nDst]), nSrc
	}
	return 1, 1
}
