package language

import (
	"strings"

	"golang.org/x/text/language"
)

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2/3 primary (3-letter)
	alts    []string // 3-letter alternates: bibliographic forms ("fre") and macrolanguage members ("cmn")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
}

var languages = []entry{
	{"en", "eng", nil, "English", []string{"english"}},
	{"es", "spa", nil, "Spanish", []string{"spanish"}},
	{"fr", "fra", []string{"fre"}, "French", []string{"french"}},
	{"de", "deu", []string{"ger"}, "German", []string{"german"}},
	{"it", "ita", nil, "Italian", []string{"italian"}},
	{"pt", "por", nil, "Portuguese", []string{"portuguese"}},
	{"ja", "jpn", nil, "Japanese", []string{"japanese"}},
	{"ko", "kor", nil, "Korean", []string{"korean"}},
	{"zh", "zho", []string{"chi", "cmn"}, "Chinese", []string{"chinese"}},
	{"ru", "rus", nil, "Russian", []string{"russian"}},
	{"ar", "ara", []string{"arb"}, "Arabic", []string{"arabic"}},
	{"hi", "hin", nil, "Hindi", []string{"hindi"}},
	{"nl", "nld", []string{"dut"}, "Dutch", []string{"dutch"}},
	{"pl", "pol", nil, "Polish", []string{"polish"}},
	{"sv", "swe", nil, "Swedish", []string{"swedish"}},
	{"da", "dan", nil, "Danish", []string{"danish"}},
	{"no", "nor", []string{"nob", "nno"}, "Norwegian", []string{"norwegian"}},
	{"fi", "fin", nil, "Finnish", []string{"finnish"}},
	{"tr", "tur", nil, "Turkish", []string{"turkish"}},
	{"uk", "ukr", nil, "Ukrainian", []string{"ukrainian"}},
	{"vi", "vie", nil, "Vietnamese", []string{"vietnamese"}},
	{"id", "ind", nil, "Indonesian", []string{"indonesian"}},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		for _, alt := range e.alts {
			byCode3[alt] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// ToISO2 converts any recognized language code or word to ISO 639-1 (2-letter).
// Returns empty string for unrecognized input. If the input is already a
// 2-letter code (even if unknown), it passes through.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// Primary extracts the primary language subtag from a BCP-47 tag, e.g. "en"
// from "en-US". Unparseable tags fall back to the text before the first dash.
func Primary(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if parsed, err := language.Parse(tag); err == nil {
		base, _ := parsed.Base()
		return base.String()
	}
	if idx := strings.IndexAny(tag, "-_"); idx > 0 {
		tag = tag[:idx]
	}
	return strings.ToLower(tag)
}

// Equal compares two language tags case-insensitively.
func Equal(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// NormalizePreference trims and deduplicates an ordered language preference,
// preserving order. An empty preference defaults to English.
func NormalizePreference(prefs []string) []string {
	normalized := make([]string, 0, len(prefs))
	seen := make(map[string]struct{}, len(prefs))
	for _, p := range prefs {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	if len(normalized) == 0 {
		return []string{"en"}
	}
	return normalized
}

// PrimarySet maps each preference to its primary subtag for membership checks.
func PrimarySet(prefs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(prefs))
	for _, p := range prefs {
		if primary := Primary(p); primary != "" {
			set[primary] = struct{}{}
		}
	}
	return set
}
