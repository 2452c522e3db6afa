package catalog

import (
	"regexp"
	"strings"
)

// CodeFamily семейство нормативных шифров
type CodeFamily string

const (
	FamilyGESN     CodeFamily = "gesn"     // ГЭСН(м/р/п) XX-XX-XXX-XX
	FamilyFER      CodeFamily = "fer"      // ФЕР/ТЕР(м/р/п) XX-XX-XXX-XX
	FamilyFSSC     CodeFamily = "fssc"     // ФССЦ/ТССЦ материалы
	FamilyFSEM     CodeFamily = "fsem"     // ФСЭМ/ТСЭМ механизмы
	FamilyKSR      CodeFamily = "ksr"      // КСР XX.X.XX.XX-XXXX
	FamilyRegional CodeFamily = "regional" // региональные точечные X-XXX-XXX
	FamilyUnknown  CodeFamily = ""
)

// codePatterns упорядочены от специфичных к общим; первый совпавший
// определяет семейство
var codePatterns = []struct {
	family CodeFamily
	re     *regexp.Regexp
}{
	{FamilyGESN, regexp.MustCompile(`^ГЭСН[МРП]?\d{2}-\d{2}-\d{3}-\d{2}$`)},
	{FamilyFER, regexp.MustCompile(`^[ФТ]ЕР[МРП]?\d{2}-\d{2}-\d{3}-\d{2}$`)},
	{FamilyFSSC, regexp.MustCompile(`^[ФТ]?ССЦ-?\d{2}\.\d\.\d{2}\.\d{2}-\d{4}$`)},
	{FamilyFSEM, regexp.MustCompile(`^[ФТ]?СЭМ-?\d{2}\.\d{2}\.\d{2}-\d{3}$`)},
	{FamilyKSR, regexp.MustCompile(`^\d{2}\.\d\.\d{2}\.\d{2}(?:-\d{4})?$`)},
	{FamilyRegional, regexp.MustCompile(`^\d{1,2}-\d{1,3}-\d{1,3}(?:-\d{1,2})?$`)},
}

var knownPrefixes = []string{"ГЭСН", "ФЕР", "ТЕР", "ФССЦ", "ТССЦ", "ФСЭМ", "ТСЭМ", "ФСБЦ"}

// NormalizeCode верхний регистр, без пробелов, единые разделители
func NormalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.NewReplacer(" ", "", " ", "", "—", "-", "–", "-", "_", "-").Replace(code)
	return code
}

// RecognizeFamily определяет семейство шифра по упорядоченным шаблонам
func RecognizeFamily(code string) CodeFamily {
	norm := NormalizeCode(code)
	for _, p := range codePatterns {
		if p.re.MatchString(norm) {
			return p.family
		}
	}
	return FamilyUnknown
}

// CodeVariants варианты написания шифра по убыванию достоверности:
// исходная нормализация, перестановки точка/дефис, без префикса,
// с каждым известным префиксом
func CodeVariants(code string) []string {
	norm := NormalizeCode(code)
	if norm == "" {
		return nil
	}

	seen := map[string]bool{}
	out := make([]string, 0, 8)
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	add(norm)
	add(strings.ReplaceAll(norm, ".", "-"))
	add(strings.ReplaceAll(norm, "-", "."))

	if stripped := stripPrefix(norm); stripped != norm {
		add(stripped)
		add(strings.ReplaceAll(stripped, ".", "-"))
	} else {
		for _, p := range knownPrefixes {
			add(p + norm)
			add(p + "-" + norm)
		}
	}

	return out
}

func stripPrefix(code string) string {
	for _, p := range knownPrefixes {
		if strings.HasPrefix(code, p) {
			return strings.TrimLeft(strings.TrimPrefix(code, p), "-.")
		}
	}
	return code
}
