// Package textutil provides text helpers shared by input decoding and
// speaker resolution.
//
// Names arriving from transcripts, extraction stages, and user confirmation
// screens are normalized here so every comparison happens on one spelling:
// NFC form, trimmed, inner whitespace collapsed. CanonicalName additionally
// folds honorific forms such as "민서씨" onto the roster entry "민서".
package textutil
