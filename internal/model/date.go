package model

import (
	"strings"
	"time"
)

// DateLayout is the civil date format the ledger service speaks.
const DateLayout = "2006-01-02"

// ParseDate parses a "YYYY-MM-DD" civil date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// Today returns the current civil date in DateLayout form.
func Today() string {
	return time.Now().Format(DateLayout)
}

func normalizeEnum(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
