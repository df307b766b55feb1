// Package i18n 提供响应消息的多语言文案。
package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// 支持的语言
const (
	LocaleEN = "en"
	LocaleHI = "hi"
)

// DefaultLocale 默认语言
const DefaultLocale = LocaleEN

var supported = []language.Tag{
	language.English,
	language.Hindi,
}

var matcher = language.NewMatcher(supported)

// ResolveLocale 按 lang 查询参数、Accept-Language 头的顺序解析语言
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if raw := strings.TrimSpace(c.Query("lang")); raw != "" {
		return NormalizeLocale(raw)
	}
	return MatchAcceptLanguage(c.GetHeader("Accept-Language"))
}

// MatchAcceptLanguage 将 Accept-Language 头匹配到支持的语言
func MatchAcceptLanguage(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return localeOf(supported[index])
}

// NormalizeLocale 归一化语言标识
func NormalizeLocale(raw string) string {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return DefaultLocale
	}
	return localeOf(supported[index])
}

func localeOf(tag language.Tag) string {
	base, _ := tag.Base()
	switch base.String() {
	case LocaleHI:
		return LocaleHI
	default:
		return LocaleEN
	}
}

// T 返回指定语言的文案，缺失时回退到英文，再回退到 key 本身
func T(locale, key string) string {
	if messages, ok := catalog[locale]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	if msg, ok := catalog[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 格式化带参数的文案
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
