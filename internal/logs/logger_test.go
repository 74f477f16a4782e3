package logs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitialize_WritesToDir(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer Close()

	Logger.WithField("board", "b1").Info("hello")

	content, err := os.ReadFile(filepath.Join(dir, "debug.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(content), "board=b1") {
		t.Errorf("expected structured field in log, got %q", content)
	}
}

func TestInitialize_EmptyDirIsNoop(t *testing.T) {
	if err := Initialize(""); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSetLevel(t *testing.T) {
	if err := SetLevel("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer SetLevel("debug")

	if err := SetLevel("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}
