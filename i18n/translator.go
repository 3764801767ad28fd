package i18n

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Message codes shared by the coercion and rule packages.
const (
	CodeRequired          = "required"
	CodeInvalid           = "invalid"
	CodeNotNumber         = "not_number"
	CodeNumberEqual       = "number_eq"
	CodeNumberGte         = "number_gte"
	CodeNumberGt          = "number_gt"
	CodeNumberLte         = "number_lte"
	CodeNumberLt          = "number_lt"
	CodeLengthEqual       = "length_eq"
	CodeLengthGte         = "length_gte"
	CodeLengthGt          = "length_gt"
	CodeLengthLte         = "length_lte"
	CodeLengthLt          = "length_lt"
	CodeLengthUnsupported = "length_unsupported"
	CodeFormat            = "format"
	CodeFormatUnsupported = "format_unsupported"
	CodeInclusion         = "inclusion"
	CodeExclusion         = "exclusion"
	CodeEachUnsupported   = "each_unsupported"
	CodeBadFunction       = "bad_function"
	CodeDuplicate         = "duplicate"
)

// Translator retrieves localized messages for message codes.
// data provides optional values substituted into "{name}" placeholders
// (for example "value").
type Translator interface {
	Message(code string, data map[string]string) string
}

var _dict = map[string]map[string]string{
	"en": {
		CodeRequired:          "is required",
		CodeInvalid:           "is invalid",
		CodeNotNumber:         "must be a number",
		CodeNumberEqual:       "must be equal to {value}",
		CodeNumberGte:         "must be greater than or equal to {value}",
		CodeNumberGt:          "must be greater than {value}",
		CodeNumberLte:         "must be less than or equal to {value}",
		CodeNumberLt:          "must be less than {value}",
		CodeLengthEqual:       "length must be equal to {value}",
		CodeLengthGte:         "length must be greater than or equal to {value}",
		CodeLengthGt:          "length must be greater than {value}",
		CodeLengthLte:         "length must be less than or equal to {value}",
		CodeLengthLt:          "length must be less than {value}",
		CodeLengthUnsupported: "length check supports only string, slice, array and map",
		CodeFormat:            "does not match format",
		CodeFormatUnsupported: "format check only supports string",
		CodeInclusion:         "not be in the inclusion list",
		CodeExclusion:         "must not be in the exclusion list",
		CodeEachUnsupported:   "each check supports only slice and array",
		CodeBadFunction:       "bad function",
		CodeDuplicate:         "duplicate value",
	},
	"ja": {
		CodeRequired:          "必須です",
		CodeInvalid:           "不正な値です",
		CodeNotNumber:         "数値である必要があります",
		CodeNumberEqual:       "{value} と等しい必要があります",
		CodeNumberGte:         "{value} 以上である必要があります",
		CodeNumberGt:          "{value} より大きい必要があります",
		CodeNumberLte:         "{value} 以下である必要があります",
		CodeNumberLt:          "{value} より小さい必要があります",
		CodeLengthEqual:       "長さは {value} である必要があります",
		CodeLengthGte:         "長さは {value} 以上である必要があります",
		CodeLengthGt:          "長さは {value} より大きい必要があります",
		CodeLengthLte:         "長さは {value} 以下である必要があります",
		CodeLengthLt:          "長さは {value} より小さい必要があります",
		CodeLengthUnsupported: "長さの検証は文字列・スライス・配列・マップのみ対応しています",
		CodeFormat:            "形式が一致しません",
		CodeFormatUnsupported: "形式の検証は文字列のみ対応しています",
		CodeInclusion:         "許可された値ではありません",
		CodeExclusion:         "禁止された値です",
		CodeEachUnsupported:   "要素の検証はスライスと配列のみ対応しています",
		CodeBadFunction:       "不正な関数です",
		CodeDuplicate:         "値が重複しています",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := _dict[t.lang][code]
	if !ok {
		if msg, ok = _dict["en"][code]; !ok {
			return code
		}
	}
	return expand(msg, data)
}

func expand(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var _supported = []language.Tag{language.English, language.Japanese}

var _matcher = language.NewMatcher(_supported)

var (
	mu                           = sync.RWMutex{}
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language. Any BCP 47 tag is
// accepted and matched against the supported set ("en", "ja"); unsupported
// languages fall back to English.
func SetLanguage(lang string) {
	_, idx := language.MatchStrings(_matcher, lang)
	base, _ := _supported[idx].Base()
	mu.Lock()
	currentTranslator = dictTranslator{lang: base.String()}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}

// Value is a shorthand for the common single-placeholder data map.
func Value(v string) map[string]string { return map[string]string{"value": v} }
