package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// filenameLayout names report files by generation time.
const filenameLayout = "20060102-150405"

// Write saves the rendered report under dir and returns the file path.
func Write(dir string, generatedAt time.Time, content string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("cluster-analysis-%s.md", generatedAt.Format(filenameLayout)))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
