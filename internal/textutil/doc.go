// Package textutil provides the text comparison primitives used for cue
// matching, plus filename sanitization.
//
// Similarity implements the Ratcliff/Obershelp matching-blocks ratio over
// case-folded runes and is the default cue text metric. Fingerprint and
// CosineSimilarity offer a word-frequency alternative, optionally weighted by
// IDF statistics collected from a whole track, for corpora where word order
// differs between the two subtitle versions.
package textutil
