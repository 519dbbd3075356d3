package search

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Filters represents parsed filters from a search query
type Filters struct {
	Query      string    // The actual search text
	Project    string    // Filter by project path
	AfterDate  time.Time // Only messages after this date
	BeforeDate time.Time // Only messages before this date
	HasAfter   bool
	HasBefore  bool
}

// ParseQuery extracts filters from a search query string
// Supports:
//   - project:<path> - filter by project
//   - after:yesterday, before:2024-11-01 - date ranges
//   - date:last-week - shorthand for after:
func ParseQuery(query string) Filters {
	filters := Filters{}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	tokens := strings.Fields(query)
	var queryParts []string

	for _, token := range tokens {
		if strings.HasPrefix(token, "project:") {
			filters.Project = strings.TrimPrefix(token, "project:")
			continue
		}

		if strings.HasPrefix(token, "date:") || strings.HasPrefix(token, "after:") {
			dateStr := token[strings.Index(token, ":")+1:]
			if parsed := parseDate(w, dateStr); parsed != nil {
				filters.AfterDate = *parsed
				filters.HasAfter = true
			}
			continue
		}

		if strings.HasPrefix(token, "before:") {
			dateStr := strings.TrimPrefix(token, "before:")
			if parsed := parseDate(w, dateStr); parsed != nil {
				filters.BeforeDate = *parsed
				filters.HasBefore = true
			}
			continue
		}

		queryParts = append(queryParts, token)
	}

	filters.Query = strings.Join(queryParts, " ")
	return filters
}

// parseDate attempts natural language parsing first, then standard formats
func parseDate(w *when.Parser, dateStr string) *time.Time {
	result, err := w.Parse(dateStr, time.Now())
	if err == nil && result != nil {
		return &result.Time
	}

	formats := []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02",
		"01/02/2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return &t
		}
	}

	return nil
}

func parseResultTime(s string) time.Time {
	for _, format := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
