package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestWithFollowsSetOutput(t *testing.T) {
	log := With("component", "summarize")

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	log.Info("summary ready", "model", "m")

	out := buf.String()
	for _, want := range []string{"component=summarize", "model=m", "summary ready"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got %q", want, out)
		}
	}
}

func TestWithGroupFollowsSetOutput(t *testing.T) {
	log := With("component", "api").WithGroup("req")

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	log.Warn("slow", "path", "/notes")

	if out := buf.String(); !strings.Contains(out, "req.path=/notes") || !strings.Contains(out, "component=api") {
		t.Errorf("Expected grouped attributes, got %q", out)
	}
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetDebugMode(false)
		SetOutput(os.Stderr)
	})

	Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("Expected no debug output at info level, got %q", buf.String())
	}

	SetDebugMode(true)
	buf.Reset()
	With("component", "x").Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("Expected debug output after SetDebugMode, got %q", buf.String())
	}
}
