package similarity

import (
	"math"
	"regexp"
	"strings"
)

// Word tokens of two or more letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TextSimilarity is CompareText with failures mapped to 0.
func TextSimilarity(a, b string) float64 {
	return CompareText(a, b).Float()
}

// CompareText builds TF-IDF vectors for a and b over the two-document corpus
// and returns their cosine similarity. English stop-words are ignored.
func CompareText(a, b string) Score {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return failed(FailureEmptyInput, nil)
	}

	tfA := termCounts(a)
	tfB := termCounts(b)
	if len(tfA) == 0 && len(tfB) == 0 {
		return failed(FailureEmptyVocabulary, nil)
	}

	vecA := tfidf(tfA, tfB)
	vecB := tfidf(tfB, tfA)

	var dot float64
	for term, wa := range vecA {
		dot += wa * vecB[term]
	}
	// Both vectors are unit length (or zero), so the dot product is the cosine.
	return scored(dot)
}

func termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if stopWords[tok] {
			continue
		}
		counts[tok]++
	}
	return counts
}

// tfidf weights doc's raw counts by the smoothed idf over {doc, other}:
// idf = ln((1+n)/(1+df)) + 1 with n = 2. The result is L2-normalised.
func tfidf(doc, other map[string]int) map[string]float64 {
	const n = 2.0
	vec := make(map[string]float64, len(doc))
	var norm float64
	for term, count := range doc {
		df := 1.0
		if other[term] > 0 {
			df = 2.0
		}
		w := float64(count) * (math.Log((1+n)/(1+df)) + 1)
		vec[term] = w
		norm += w * w
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for term := range vec {
		vec[term] /= norm
	}
	return vec
}
