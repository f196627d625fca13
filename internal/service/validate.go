package service

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	iNumberPattern = regexp.MustCompile(`^\d{9}$`)
)

const minPasswordLength = 6

func length(s string) int { return utf8.RuneCountInString(s) }

func validEmail(s string) bool {
	return s != "" && length(s) <= 45 && emailPattern.MatchString(s)
}

// parseINumber accepts exactly nine digits.
func parseINumber(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !iNumberPattern.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil && n > 0
}

// parseInt parses a base-10 integer, tolerating surrounding spaces.
func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}
