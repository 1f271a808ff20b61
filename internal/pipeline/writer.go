package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteReport saves text as <dir>/<websiteID>.csv, creating dir when missing
// and replacing any earlier file. It returns the written path.
func WriteReport(dir, websiteID, text string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWritingReport, err)
	}
	path := filepath.Join(dir, websiteID+".csv")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWritingReport, err)
	}
	return path, nil
}
