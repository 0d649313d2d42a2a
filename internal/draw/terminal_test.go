package draw

import (
	"strings"
	"testing"
)

func TestChunkWriterAppliesOffset(t *testing.T) {
	var out strings.Builder
	cw := NewChunkWriter(&out, 10, 5)

	cw.WriteAt(1, 1, "hi")
	if err := cw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	if got := out.String(); got != "\033[6;11Hhi" {
		t.Errorf("output = %q, want cursor at offset position", got)
	}
}

func TestChunkWriterFlushResets(t *testing.T) {
	var out strings.Builder
	cw := NewChunkWriter(&out, 0, 0)

	cw.WriteString("first")
	if err := cw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	cw.WriteString("second")
	if err := cw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	if got := out.String(); got != "firstsecond" {
		t.Errorf("output = %q, want buffer cleared between flushes", got)
	}
}

func TestChunkWriterChunksLargePayloads(t *testing.T) {
	var out strings.Builder
	cw := NewChunkWriter(&out, 0, 0)

	payload := strings.Repeat("x", maxChunkSize*3+17)
	cw.WriteString(payload)
	if err := cw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	if out.String() != payload {
		t.Errorf("chunked write lost data: got %d bytes, want %d", out.Len(), len(payload))
	}
}

func TestMouseReportingSequences(t *testing.T) {
	var out strings.Builder
	EnableMouseReporting(&out)
	if !strings.Contains(out.String(), "?1006h") {
		t.Errorf("enable sequence %q missing SGR mode", out.String())
	}

	out.Reset()
	DisableMouseReporting(&out)
	if !strings.Contains(out.String(), "?1003l") {
		t.Errorf("disable sequence %q missing any-event mode off", out.String())
	}
}
