package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

type Language string

const (
	LanguageEnglish Language = "English"
	LanguageHindi   Language = "Hindi"
	LanguageMarathi Language = "Marathi"
)

// ParseLanguage accepts a language name or ISO code (case-insensitive)
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "english", "en", "":
		return LanguageEnglish, nil
	case "hindi", "hi":
		return LanguageHindi, nil
	case "marathi", "mr":
		return LanguageMarathi, nil
	default:
		return "", goerr.New("unsupported language", goerr.V("language", s))
	}
}

// Code returns the ISO 639-1 code used by the translation and speech services
func (l Language) Code() string {
	switch l {
	case LanguageHindi:
		return "hi"
	case LanguageMarathi:
		return "mr"
	default:
		return "en"
	}
}

func (l Language) IsEnglish() bool {
	return l == LanguageEnglish
}
