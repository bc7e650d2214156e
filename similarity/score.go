// Package similarity scores how alike two reports are, by text and by image,
// and fuses both signals into a single ranking score.
package similarity

// Failure tags why a comparison degraded to 0.0.
type Failure string

const (
	FailureNone            Failure = ""
	FailureEmptyInput      Failure = "empty_input"
	FailureEmptyVocabulary Failure = "empty_vocabulary"
	FailureOpen            Failure = "open_failed"
	FailureDecode          Failure = "decode_failed"
)

// Score is the outcome of one comparison. Value is always in [0,1]; when
// Failure is set, Value is 0.
type Score struct {
	Value   float64
	Failure Failure
	Err     error
}

func failed(reason Failure, err error) Score {
	return Score{Failure: reason, Err: err}
}

func scored(v float64) Score {
	return Score{Value: clamp01(v)}
}

func (s Score) Failed() bool {
	return s.Failure != FailureNone
}

// Float returns the score value, or 0 if the comparison failed.
func (s Score) Float() float64 {
	if s.Failed() {
		return 0
	}
	return s.Value
}

func clamp01(v float64) float64 {
	if v != v || v < 0 { // NaN or negative
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
