package model

// ScoreCard holds the relevance metrics of one candidate summary against a
// reference text. All fields are in [0,1] and default to zero when scoring
// fails; scoring never propagates an error to the caller.
type ScoreCard struct {
	ModelName  string
	Rouge1     float64
	Rouge2     float64
	RougeL     float64
	SemanticF1 float64
}

// Total is the selection key: the plain sum of the four metrics
func (s ScoreCard) Total() float64 {
	return s.Rouge1 + s.Rouge2 + s.RougeL + s.SemanticF1
}

// ClassificationResult is the verdict of the news gate. Confidence is binary:
// the classifier is a recall-biased keyword gate, not a probabilistic model.
type ClassificationResult struct {
	IsNews     bool
	Confidence float64
}
