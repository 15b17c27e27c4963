package model

// Candidate is one summary produced by a single generation backend
type Candidate struct {
	ModelName string
	Language  Language
	Text      string
}

// CandidatePair holds the outputs of both generation backends. Fields are
// always present; a failed backend contributes an empty string.
type CandidatePair struct {
	Primary   string // hosted LLM backend
	Secondary string // local seq2seq backend
}

// Get returns the candidate text for a backend name, or empty string
func (p CandidatePair) Get(name string) string {
	switch name {
	case BackendPrimary:
		return p.Primary
	case BackendSecondary:
		return p.Secondary
	default:
		return ""
	}
}

// Empty reports whether both candidates are empty
func (p CandidatePair) Empty() bool {
	return p.Primary == "" && p.Secondary == ""
}

// Backend names used as candidate keys throughout the pipeline
const (
	BackendPrimary   = "gemini"
	BackendSecondary = "t5"
)

// BackendNames returns the candidate keys in deterministic order
func BackendNames() []string {
	return []string{BackendPrimary, BackendSecondary}
}

// SummarySet is the fully-shaped result of dual summarization. English holds
// the candidates used for evaluation; Final holds the candidates in the target
// language shown to the user. For an English target the two are identical.
type SummarySet struct {
	English CandidatePair
	Final   CandidatePair
}
