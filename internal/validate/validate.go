package validate

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Name trims and bounds a user or product name. Uniqueness is the store's
// concern, not ours.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, true
}

func Age(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func Price(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Query clamps a search query; an empty result means "list everything".
// The cut lands on a rune boundary so a multi-byte query never turns into
// invalid UTF-8 on its way to a backend.
func Query(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 50 {
		cut := 50
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
