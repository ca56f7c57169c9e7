// Package graphviz renders DOT descriptions to PNG images through the local
// Graphviz installation.
package graphviz

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

type Renderer struct {
	outDir string
}

func NewRenderer(outDir string) *Renderer {
	return &Renderer{outDir: outDir}
}

// Render writes outID.png under the renderer's output directory and returns
// its path. Strings that do not look like a digraph are rejected without
// invoking the rendering tool.
func (r *Renderer) Render(ctx context.Context, dot, outID string) (string, error) {
	if dot == "" || !strings.Contains(strings.ToLower(dot), "digraph") {
		return "", fmt.Errorf("not a digraph description")
	}

	outPath := filepath.Join(r.outDir, outID+".png")
	cmd := exec.CommandContext(ctx, "dot", "-Tpng", "-o", outPath)
	cmd.Stdin = strings.NewReader(dot)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return "", fmt.Errorf("dot failed: %v: %s", err, strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("dot failed: %w", err)
	}
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("dot produced no output file: %w", err)
	}

	logrus.Infof("Mind map PNG generated: %s", outPath)
	return outPath, nil
}
