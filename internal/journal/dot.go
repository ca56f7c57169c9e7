package journal

import (
	"fmt"
	"strings"
)

// SanitizeLabel makes a free-text value safe to embed inside a quoted DOT
// label: spaces and hyphens become underscores, single quotes and backticks
// are dropped, and double quotes are escaped. Escaped quotes are unescaped
// first so applying the function twice equals applying it once.
func SanitizeLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "`", "")
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// topicNodes renders the topic node/edge statements for the mind-map
// skeleton. Empty and "N/A" values produce no node.
func topicNodes(topics string) string {
	return labelNodes(topics, "topic", "Topic", "lightgreen")
}

func categoryNodes(categories string) string {
	return labelNodes(categories, "cat", "Category", "lightcoral")
}

func labelNodes(csv, idPrefix, labelPrefix, fillColor string) string {
	var nodes []string
	for i, value := range strings.Split(csv, ",") {
		value = strings.TrimSpace(value)
		if value == "" || value == "N/A" {
			continue
		}
		nodes = append(nodes, fmt.Sprintf(
			`%s%d [label="%s: %s", fillcolor="%s"]; main -> %s%d;`,
			idPrefix, i, labelPrefix, SanitizeLabel(value), fillColor, idPrefix, i,
		))
	}
	return strings.Join(nodes, " ")
}

// cleanInline strips characters that would break a DOT label or the template
// braces when embedded directly in the prompt skeleton.
func cleanInline(s string) string {
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return s
}

func summarize(text string, max int) string {
	runes := []rune(text)
	if len(runes) > max {
		runes = runes[:max]
	}
	return cleanInline(string(runes))
}
