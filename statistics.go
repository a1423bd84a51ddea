package initbot

import (
	"fmt"
	"sort"
	"strings"
)

// Statistics summarizes a set of initiatives.
type Statistics struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
	ByResult map[string]int `json:"byResult"`
	ByYear   map[string]int `json:"byYear"`
}

// ComputeStatistics counts initiatives by status, result and submission year.
// Missing values are counted under "Unknown".
func ComputeStatistics(initiatives []*Initiative) *Statistics {
	s := &Statistics{
		Total:    len(initiatives),
		ByStatus: make(map[string]int),
		ByResult: make(map[string]int),
		ByYear:   make(map[string]int),
	}
	for _, i := range initiatives {
		s.ByStatus[orUnknown(i.Status)]++
		s.ByResult[orUnknown(i.Result)]++
		s.ByYear[orUnknown(i.SubmissionYear())]++
	}
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// SuccessRate returns the share of accepted initiatives among those that
// were voted on. Returns 0 if none has a result.
func (s *Statistics) SuccessRate() float64 {
	accepted := s.ByResult["Accepted"]
	decided := accepted + s.ByResult["Rejected"]
	if decided == 0 {
		return 0
	}
	return float64(accepted) / float64(decided)
}

// Format renders the statistics as Markdown.
func (s *Statistics) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "There are %d initiatives in the database.\n", s.Total)
	writeCounts(&sb, "By status", s.ByStatus)
	writeCounts(&sb, "By result", s.ByResult)
	if s.ByResult["Accepted"]+s.ByResult["Rejected"] > 0 {
		fmt.Fprintf(&sb, "\nSuccess rate of voted initiatives: %.1f%%\n", s.SuccessRate()*100)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeCounts(sb *strings.Builder, heading string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if counts[keys[a]] != counts[keys[b]] {
			return counts[keys[a]] > counts[keys[b]]
		}
		return keys[a] < keys[b]
	})
	fmt.Fprintf(sb, "\n**%s**\n", heading)
	for _, k := range keys {
		fmt.Fprintf(sb, "- %s: %d\n", k, counts[k])
	}
}
