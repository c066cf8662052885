// Package charset converts between the native engine's coordinate space
// (encoded bytes, one style byte per byte) and the API's coordinate space
// (UTF-16 code units, one style per code unit).
//
// All functions are stateless. Malformed input never fails: invalid UTF-8
// bytes are treated as U+FFFD, one per byte, consistently across counting,
// decoding and style conversion so that conversions round-trip.
//
// Encodings come from golang.org/x/text. A nil encoding.Encoding means UTF-8.
package charset
