package party

import (
	"context"
	"encoding/json"
	"strings"

	"lexside/api/internal/llm"
)

const detectTemperature = 0.1

const detectPrompt = `You are a neutral legal analyst. Identify ALL primary contracting parties mentioned in the agreement exactly as they appear (company names, individuals, etc.).
Respond ONLY in JSON: {"parties": ["Party 1", "Party 2", ...]}.
---
%DOC%`

const retryPrompt = `You are a neutral legal analyst. Your previous answer did not contain usable party names.
Read the agreement again and list EVERY primary contracting party using the EXACT names written in the document. Generic labels such as "Party A", "Plaintiff" or "Defendant" are NOT acceptable.
Respond ONLY in JSON: {"parties": ["Full Name One", "Full Name Two", ...]}. No prose, no markdown fences.
---
%DOC%`

// Detection is the outcome of a detect call including the one-shot retry.
type Detection struct {
	Parties  []string
	Summary  string
	Attempts int
}

// Detector asks the model for the contracting parties and retries once with
// reinforced wording when the normalized result is below the minimum.
type Detector struct {
	llm        llm.Client
	minParties int
}

func NewDetector(client llm.Client, minParties int) *Detector {
	if minParties < 1 {
		minParties = 1
	}
	return &Detector{llm: client, minParties: minParties}
}

// Detect runs at most two completion requests and returns the second
// normalized result regardless of outcome. A malformed model response is an
// empty list, never an error; only transport failures are returned as errors.
func (d *Detector) Detect(ctx context.Context, docText string) (Detection, error) {
	raw, err := d.llm.Complete(ctx, strings.Replace(detectPrompt, "%DOC%", docText, 1), detectTemperature)
	if err != nil {
		return Detection{}, err
	}
	parties, summary := parseParties(raw)
	parties = Normalize(parties)
	if len(parties) >= d.minParties {
		return Detection{Parties: parties, Summary: summary, Attempts: 1}, nil
	}

	raw, err = d.llm.Complete(ctx, strings.Replace(retryPrompt, "%DOC%", docText, 1), detectTemperature)
	if err != nil {
		return Detection{}, err
	}
	parties, retrySummary := parseParties(raw)
	if retrySummary == "" {
		retrySummary = summary
	}
	return Detection{Parties: Normalize(parties), Summary: retrySummary, Attempts: 2}, nil
}

// Sufficient reports whether det met the detector's minimum.
func (d *Detector) Sufficient(det Detection) bool {
	return len(det.Parties) >= d.minParties
}

type partiesPayload struct {
	Summary string   `json:"summary"`
	Parties []string `json:"parties"`
}

// parseParties pulls the {"parties": [...]} shape out of a model response,
// tolerating markdown fences and surrounding prose. Anything unparseable
// yields an empty list.
func parseParties(raw string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if fenced, ok := strings.CutPrefix(raw, "```"); ok {
		fenced = strings.TrimPrefix(fenced, "json")
		if body, _, ok := strings.Cut(fenced, "```"); ok {
			raw = body
		} else {
			raw = fenced
		}
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, ""
	}
	var payload partiesPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil, ""
	}
	return payload.Parties, strings.TrimSpace(payload.Summary)
}
