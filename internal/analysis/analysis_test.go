package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubLLM struct {
	response string
	err      error
	prompt   string
	calls    int
}

func (s *stubLLM) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	s.calls++
	s.prompt = prompt
	return s.response, s.err
}

func TestAnalyzePromptCarriesPartyAndSections(t *testing.T) {
	stub := &stubLLM{response: "## Executive Summary\nFine."}
	a := New(stub)

	_, err := a.Analyze(context.Background(), "Acme Corp", "the document text")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !strings.Contains(stub.prompt, "perspective of Acme Corp") {
		t.Errorf("expected party name in prompt, got %q", stub.prompt)
	}
	if !strings.Contains(stub.prompt, "the document text") {
		t.Error("expected document text in prompt")
	}
	for _, section := range Sections {
		if !strings.Contains(stub.prompt, section) {
			t.Errorf("expected section %q in prompt", section)
		}
	}
}

func TestAnalyzeReturnsOutputUnmodified(t *testing.T) {
	report := "## Executive Summary\nShort.\n\n## Surprise Heading\nNo validation here."
	stub := &stubLLM{response: report}
	a := New(stub)

	got, err := a.Analyze(context.Background(), "Globex Inc.", "doc")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got != report {
		t.Errorf("expected verbatim output, got %q", got)
	}
	if stub.calls != 1 {
		t.Errorf("expected exactly 1 call, got %d", stub.calls)
	}
}

func TestAnalyzePropagatesError(t *testing.T) {
	boom := errors.New("upstream down")
	a := New(&stubLLM{err: boom})

	_, err := a.Analyze(context.Background(), "Acme Corp", "doc")
	if !errors.Is(err, boom) {
		t.Errorf("expected error to propagate, got %v", err)
	}
}
