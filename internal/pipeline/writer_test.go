package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")

	path, err := WriteReport(dir, "site", "first\n")
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if path != filepath.Join(dir, "site.csv") {
		t.Errorf("path = %q", path)
	}

	if _, err := WriteReport(dir, "site", "second\n"); err != nil {
		t.Fatalf("WriteReport overwrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "second\n" {
		t.Errorf("content = %q, want the later write", data)
	}
}

func TestWriteReport_Failure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteReport(file, "site", "x"); err == nil {
		t.Fatal("expected an error when the output path is a file")
	}
}
