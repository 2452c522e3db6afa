package catalog

import "strings"

// TrigramSimilarity сходство строк по триграммам (коэффициент Жаккара),
// как в pg_trgm: регистронезависимо, с паддингом границ слов
func TrigramSimilarity(a, b string) float64 {
	ta := trigrams(a)
	tb := trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for t := range ta {
		if tb[t] {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func trigrams(s string) map[string]bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}

	out := make(map[string]bool)
	for _, word := range strings.Fields(s) {
		runes := []rune("  " + word + " ")
		for i := 0; i+3 <= len(runes); i++ {
			out[string(runes[i:i+3])] = true
		}
	}
	return out
}
