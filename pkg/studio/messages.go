package studio

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale はユーザー向けメッセージの既定言語です。
const DefaultLocale = "pt"

type messageKey int

const (
	msgDescribeIdea messageKey = iota
	msgGenerationFailed
)

var catalog = map[string]map[messageKey]string{
	"pt": {
		msgDescribeIdea:     "Por favor, descreva sua ideia.",
		msgGenerationFailed: "Erro ao gerar imagem. Tente novamente mais tarde.",
	},
	"en": {
		msgDescribeIdea:     "Please describe your idea.",
		msgGenerationFailed: "Error generating image. Please try again later.",
	},
}

var (
	supportedTags = []language.Tag{language.Portuguese, language.English}
	matcher       = language.NewMatcher(supportedTags)
)

func message(locale string, key messageKey) string {
	if m, ok := catalog[locale]; ok {
		return m[key]
	}
	return catalog[DefaultLocale][key]
}

// MatchLocale は Accept-Language 形式の文字列から対応ロケールを選びます。
// 該当がなければ fallback を返します。
func MatchLocale(accept, fallback string) string {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	base, _ := supportedTags[idx].Base()
	return base.String()
}
