package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"unicode"
)

// Signature порядконезависимый отпечаток заголовка: токены нормализуются
// (регистр, пробелы, не-буквенно-цифровые символы), сортируются и
// хэшируются. Перестановка колонок в знакомом шаблоне даёт тот же отпечаток.
func Signature(headers []string) string {
	tokens := make([]string, 0, len(headers))
	for _, h := range headers {
		if t := normalizeToken(h); t != "" {
			tokens = append(tokens, t)
		}
	}
	sort.Strings(tokens)

	sum := sha256.Sum256([]byte(strings.Join(tokens, "|")))
	return hex.EncodeToString(sum[:])
}

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	space := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}
