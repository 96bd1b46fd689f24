// Package termvec builds sparse term-frequency vectors from free text.
//
// A term vector is the retrieval representation for decision memories:
// a bag-of-words mapping from lowercase term to occurrence count. Vectors
// are always derived from text, never edited by hand, and the similarity
// between two vectors is their dot product over shared terms.
package termvec

import "strings"

// minTermLength is the shortest token kept by ExtractTerms. Tokens of this
// byte length or shorter carry too little signal to score on.
const minTermLength = 3

// stopWords is the closed set of filler terms excluded from vectors.
var stopWords = map[string]bool{
	"this":   true,
	"that":   true,
	"with":   true,
	"from":   true,
	"there":  true,
	"about":  true,
	"should": true,
	"could":  true,
	"would":  true,
	"which":  true,
}

// Vector is a sparse term-frequency vector: lowercase term -> positive count.
//
// The zero value (nil) behaves as an empty vector for all operations in
// this package, which lets callers treat a memory without a stored vector
// as simply matching nothing.
type Vector map[string]int

// ExtractTerms tokenizes free text into the lowercase terms a vector is
// built from.
//
// The pipeline: lowercase the input, strip every character that is neither
// a word character nor whitespace, split on whitespace runs, then drop
// short tokens and stop words. The result is deterministic and depends
// only on the input text.
//
// Returns the surviving tokens in input order (duplicates preserved).
func ExtractTerms(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '_':
			return r
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '\f', r == '\v':
			return r
		default:
			return -1
		}
	}, strings.ToLower(text))

	fields := strings.Fields(cleaned)
	terms := make([]string, 0, len(fields))
	for _, tok := range fields {
		if len(tok) <= minTermLength {
			continue
		}
		if stopWords[tok] {
			continue
		}
		terms = append(terms, tok)
	}
	return terms
}

// Build constructs a term vector by counting the frequencies of the terms
// ExtractTerms yields for the given text.
//
// Empty or all-filler input yields an empty (non-nil) vector, not an error.
// Because counting is order-independent, shuffling the words of the input
// produces an identical vector.
func Build(text string) Vector {
	terms := ExtractTerms(text)
	vec := make(Vector, len(terms))
	for _, t := range terms {
		vec[t]++
	}
	return vec
}

// Dot returns the similarity of two vectors: the sum over shared terms of
// the product of their counts. Vectors with no terms in common score 0.
func Dot(a, b Vector) int {
	// Iterate the smaller map.
	if len(b) < len(a) {
		a, b = b, a
	}
	sum := 0
	for term, n := range a {
		if m, ok := b[term]; ok {
			sum += n * m
		}
	}
	return sum
}
