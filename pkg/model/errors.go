package model

import "github.com/m-mizutani/goerr/v2"

// Error tags for the failure taxonomy. Only extraction failures and
// classification rejections are surfaced to the user as pipeline-halting
// errors; every other category is absorbed at its component boundary and
// converted to a degraded result.
var (
	TagExtraction  = goerr.NewTag("extraction")
	TagNotNews     = goerr.NewTag("not_news")
	TagGeneration  = goerr.NewTag("generation")
	TagTranslation = goerr.NewTag("translation")
	TagMemory      = goerr.NewTag("memory")
	TagEvaluation  = goerr.NewTag("evaluation")
	TagSpeech      = goerr.NewTag("speech")
)

// ErrNotNews is returned by the pipeline when the classifier rejects the
// input. This is user-correctable, not a system fault.
var ErrNotNews = goerr.New("content does not appear to be news-related", goerr.T(TagNotNews))
