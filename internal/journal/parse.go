package journal

import (
	"regexp"
	"strings"
)

const (
	dotStartMarker = "--- DOT START ---"

	analysisPreamble = "**Analysis for "
)

// Categorization is the parsed sentiment/topics/categories triple. Fields the
// model omitted come back as "N/A".
type Categorization struct {
	Sentiment  string
	Topics     string
	Categories string
}

var (
	sentimentRe  = regexp.MustCompile(`(?i)Sentiment:\s*(.*)`)
	topicsRe     = regexp.MustCompile(`(?i)Topics:\s*(.*)`)
	categoriesRe = regexp.MustCompile(`(?i)Categories:\s*(.*)`)
	dotBlockRe   = regexp.MustCompile(`(?s)--- DOT START ---(.*?)--- DOT END ---`)
)

// ParseCategorization is a tolerant line-oriented parser over the model's
// free-text categorization response.
func ParseCategorization(text string) Categorization {
	cat := Categorization{Sentiment: "N/A", Topics: "N/A", Categories: "N/A"}
	if m := sentimentRe.FindStringSubmatch(text); m != nil {
		cat.Sentiment = strings.TrimSpace(m[1])
	}
	if m := topicsRe.FindStringSubmatch(text); m != nil {
		cat.Topics = strings.TrimSpace(m[1])
	}
	if m := categoriesRe.FindStringSubmatch(text); m != nil {
		cat.Categories = strings.TrimSpace(m[1])
	}
	return cat
}

// SplitAnalysis separates the user-facing reflection from the embedded DOT
// block. Without markers the whole response is the analysis and dot is empty.
// A "**Analysis for NAME:**" preamble, when present, is stripped from the
// user-facing part.
func SplitAnalysis(text string) (analysis, dot string) {
	m := dotBlockRe.FindStringSubmatch(text)
	if m == nil {
		return strings.TrimSpace(text), ""
	}

	dot = strings.TrimSpace(m[1])
	candidate := text[:strings.Index(text, dotStartMarker)]
	if strings.Contains(candidate, analysisPreamble) {
		if idx := strings.Index(candidate, ":**"); idx >= 0 {
			candidate = candidate[idx+len(":**"):]
		}
	}
	return strings.TrimSpace(candidate), dot
}
