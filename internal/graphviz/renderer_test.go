package graphviz

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestRenderRejectsNonDigraph(t *testing.T) {
	r := NewRenderer(t.TempDir())

	for _, dot := range []string{"", "graph G { a -- b }", "random text"} {
		if path, err := r.Render(context.Background(), dot, "out"); err == nil {
			t.Errorf("Render(%q) succeeded with path %q, want rejection", dot, path)
		}
	}
}

func TestRenderProducesPNG(t *testing.T) {
	if _, err := exec.LookPath("dot"); err != nil {
		t.Skip("graphviz not installed")
	}

	r := NewRenderer(t.TempDir())
	path, err := r.Render(context.Background(), "digraph G { a -> b; }", "7_jmap_test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, "7_jmap_test.png") {
		t.Errorf("path = %q", path)
	}
}
