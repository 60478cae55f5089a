package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)
		logger.Info("hello")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output, got %q", buf.String())
		}
	})

	t.Run("NewLogger defaults to stderr with nil writer", func(t *testing.T) {
		if NewLogger(nil) == nil {
			t.Error("expected a logger")
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "app.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		logger.Info("written")

		content := readFile(t, path)
		if !strings.Contains(content, "written") {
			t.Errorf("expected log entry in file, got %q", content)
		}
	})
}

func TestGenerateID(t *testing.T) {
	first := GenerateID()
	second := GenerateID()

	if first == "" {
		t.Error("expected a non-empty ID")
	}
	if first == second {
		t.Error("expected IDs to be unique")
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]string{"key": "value"}

	t.Run("compact", func(t *testing.T) {
		out, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(out) != `{"key":"value"}` {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("pretty", func(t *testing.T) {
		out, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(out), `"key": "value"`) {
			t.Errorf("expected indented output, got %s", out)
		}
	})
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
