package display

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleDisplay(t *testing.T) {
	buf := &bytes.Buffer{}
	d := NewWriterDisplay(buf)
	d.SetVerbose(true)

	task := d.StartTask("example.com/a.png")

	// Check initial output
	output := buf.String()
	if !strings.Contains(output, "[example.com/a.png]") {
		t.Errorf("Expected output to contain task name, got: %q", output)
	}

	buf.Reset()
	task.Progress(512*1024, 1024*1024)
	// Output should contain move up + clear line + new status
	output = buf.String()
	if !strings.Contains(output, "\x1b[1A\x1b[2K") {
		t.Errorf("Expected ANSI clear codes, got: %q", output)
	}
	if !strings.Contains(output, "50%") {
		t.Errorf("Expected 50%%, got: %q", output)
	}

	buf.Reset()
	task.Log("Hello")
	output = buf.String()
	// Should clear lines, print log, reprint task
	if !strings.Contains(output, "Hello") {
		t.Errorf("Expected log message, got: %q", output)
	}
	if !strings.Contains(output, "50%") {
		t.Errorf("Expected task reprint, got: %q", output)
	}

	buf.Reset()
	task.Done()
	output = buf.String()
	// Should clear lines, log Done
	if !strings.Contains(output, "Done") {
		t.Errorf("Expected Done message, got: %q", output)
	}

	// Verify closing
	d.Close()
}

func TestConsoleUnknownTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	d := NewWriterDisplay(buf)

	task := d.StartTask("download")
	buf.Reset()
	task.Progress(2048, -1)

	output := buf.String()
	if !strings.Contains(output, "2.0 kB") {
		t.Errorf("Expected humanized byte count, got: %q", output)
	}
	task.Done()
}

func TestConsoleLogGatedByVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	d := NewWriterDisplay(buf)

	d.Log("quiet")
	if buf.Len() != 0 {
		t.Errorf("Expected no output when not verbose, got: %q", buf.String())
	}

	d.SetVerbose(true)
	d.Log("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Errorf("Expected log output when verbose, got: %q", buf.String())
	}
}
