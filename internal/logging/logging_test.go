package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewWithOutput(&buf, "info", "json")
	if err != nil {
		t.Fatalf("NewWithOutput() error = %v", err)
	}
	Component(logger, "store").Debug("hidden")
	Component(logger, "store").Info("visible")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if line["component"] != "store" || line["msg"] != "visible" {
		t.Errorf("unexpected log line: %v", line)
	}
}

func TestNewWithOutput_Rejects(t *testing.T) {
	if _, err := NewWithOutput(&bytes.Buffer{}, "loud", "json"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := NewWithOutput(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
