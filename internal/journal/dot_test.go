package journal

import (
	"strings"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	in := "Test \"Topic\" - for 'project' & `code`"

	got := SanitizeLabel(in)
	if strings.ContainsAny(got, "' `") {
		t.Errorf("sanitized label still has forbidden characters: %q", got)
	}
	if strings.Contains(strings.ReplaceAll(got, `\"`, ""), `"`) {
		t.Errorf("sanitized label has unescaped quote: %q", got)
	}

	if twice := SanitizeLabel(got); twice != got {
		t.Errorf("not idempotent: first %q, second %q", got, twice)
	}
}

func TestSanitizeLabelSimpleValues(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Work", "Work"},
		{" Personal Growth ", "Personal_Growth"},
		{"self-care", "self_care"},
		{`say "hi"`, `say_\"hi\"`},
	}
	for _, tt := range tests {
		if got := SanitizeLabel(tt.in); got != tt.want {
			t.Errorf("SanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTopicNodesSkipsEmptyAndNA(t *testing.T) {
	got := topicNodes("Work, N/A, , Family Life")
	if strings.Contains(got, "N/A") {
		t.Errorf("N/A leaked into nodes: %q", got)
	}
	if !strings.Contains(got, `topic0 [label="Topic: Work", fillcolor="lightgreen"]; main -> topic0;`) {
		t.Errorf("missing Work node: %q", got)
	}
	if !strings.Contains(got, `topic3 [label="Topic: Family_Life"`) {
		t.Errorf("missing Family Life node: %q", got)
	}
}

func TestCategoryNodesAllFiltered(t *testing.T) {
	if got := categoryNodes("N/A"); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestSummarizeTruncatesAndCleans(t *testing.T) {
	got := summarize("line one\nwith \"quotes\" and {braces} plus far more text than fits", 30)
	if strings.ContainsAny(got, "\"\n{}") {
		t.Errorf("summary has unsafe characters: %q", got)
	}
	if len([]rune(got)) > 30 {
		t.Errorf("summary too long: %d runes", len([]rune(got)))
	}
}
