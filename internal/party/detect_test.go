package party

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// stubLLM returns canned responses in order and counts calls.
type stubLLM struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (s *stubLLM) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func TestDetectSingleCallWhenSufficient(t *testing.T) {
	stub := &stubLLM{responses: []string{`{"parties": ["Acme Corp", "Globex Inc."]}`}}
	d := NewDetector(stub, 2)

	det, err := d.Detect(context.Background(), "This Agreement is between Acme Corp and Globex Inc.")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	want := []string{"Acme Corp", "Globex Inc."}
	if !reflect.DeepEqual(det.Parties, want) {
		t.Errorf("expected %v, got %v", want, det.Parties)
	}
	if stub.calls != 1 {
		t.Errorf("expected exactly 1 call, got %d", stub.calls)
	}
	if det.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", det.Attempts)
	}
	if !d.Sufficient(det) {
		t.Error("expected detection to be sufficient")
	}
}

func TestDetectRetriesExactlyOnce(t *testing.T) {
	// Placeholders normalize away on both attempts; the stub must be called
	// exactly twice, never three or more times.
	stub := &stubLLM{responses: []string{`{"parties": ["Party A", "Party B"]}`}}
	d := NewDetector(stub, 2)

	det, err := d.Detect(context.Background(), "doc")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if stub.calls != 2 {
		t.Errorf("expected exactly 2 calls, got %d", stub.calls)
	}
	if len(det.Parties) != 0 {
		t.Errorf("expected empty party list, got %v", det.Parties)
	}
	if det.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", det.Attempts)
	}
	if d.Sufficient(det) {
		t.Error("expected detection to be insufficient")
	}
	if !strings.Contains(stub.prompts[1], "NOT acceptable") {
		t.Error("expected reinforced wording in retry prompt")
	}
}

func TestDetectRetryResultReturnedRegardless(t *testing.T) {
	stub := &stubLLM{responses: []string{
		`{"parties": ["Acme Corp"]}`,
		`{"parties": ["Acme Corp", "Globex Inc.", "Initech LLC"]}`,
	}}
	d := NewDetector(stub, 2)

	det, err := d.Detect(context.Background(), "doc")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	want := []string{"Acme Corp", "Globex Inc.", "Initech LLC"}
	if !reflect.DeepEqual(det.Parties, want) {
		t.Errorf("expected retry result %v, got %v", want, det.Parties)
	}
	if stub.calls != 2 {
		t.Errorf("expected 2 calls, got %d", stub.calls)
	}
}

func TestDetectMalformedResponseIsEmptyNotError(t *testing.T) {
	stub := &stubLLM{responses: []string{"I could not find any JSON, sorry."}}
	d := NewDetector(stub, 2)

	det, err := d.Detect(context.Background(), "doc")
	if err != nil {
		t.Fatalf("expected no error for malformed response, got %v", err)
	}
	if len(det.Parties) != 0 {
		t.Errorf("expected empty parties, got %v", det.Parties)
	}
	if stub.calls != 2 {
		t.Errorf("expected retry after malformed response, got %d calls", stub.calls)
	}
}

func TestDetectTransportErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	stub := &stubLLM{err: boom}
	d := NewDetector(stub, 2)

	_, err := d.Detect(context.Background(), "doc")
	if !errors.Is(err, boom) {
		t.Errorf("expected transport error to propagate, got %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("expected no retry on transport error, got %d calls", stub.calls)
	}
}

func TestDetectCapturesSummary(t *testing.T) {
	stub := &stubLLM{responses: []string{`{"summary": "A service agreement.", "parties": ["Acme Corp", "Globex Inc."]}`}}
	d := NewDetector(stub, 2)

	det, err := d.Detect(context.Background(), "doc")
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if det.Summary != "A service agreement." {
		t.Errorf("expected summary captured, got %q", det.Summary)
	}
}

func TestParsePartiesToleratesFences(t *testing.T) {
	parties, _ := parseParties("```json\n{\"parties\": [\"Acme Corp\"]}\n```")
	if !reflect.DeepEqual(parties, []string{"Acme Corp"}) {
		t.Errorf("expected fenced JSON parsed, got %v", parties)
	}

	parties, _ = parseParties("Here you go: {\"parties\": [\"Globex Inc.\"]} hope that helps")
	if !reflect.DeepEqual(parties, []string{"Globex Inc."}) {
		t.Errorf("expected embedded JSON parsed, got %v", parties)
	}
}
