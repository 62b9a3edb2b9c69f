// Package analysis generates the perspective report for a chosen party.
package analysis

import (
	"context"
	"strings"

	"lexside/api/internal/llm"
)

const reportTemperature = 0.1

// Sections are the fixed report headings, in order. The model is instructed
// to emit exactly these; the response is surfaced without validation.
var Sections = []string{
	"Executive Summary",
	"My Key Obligations & Responsibilities",
	"Key Risks & Red Flags",
	"Key Benefits & Protections",
	"Jargon Buster",
	"Questions to Ask",
}

const reportPrompt = `Please analyze the attached document **strictly from the perspective of %PARTY%** and answer in clear, plain English.

Structure your response exactly as follows:

## Executive Summary (no more than 3 sentences)

## My Key Obligations & Responsibilities (bullets)

## Key Risks & Red Flags (bullets + simple explanation of why)

## Key Benefits & Protections (bullets)

## Jargon Buster (explain 3-5 key legal terms)

## Questions to Ask (3-5 questions)

Respond in markdown.
---
%DOC%`

// Analyzer produces a single markdown report per call. No retry logic; the
// remote call's output is returned as-is.
type Analyzer struct {
	llm llm.Client
}

func New(client llm.Client) *Analyzer {
	return &Analyzer{llm: client}
}

func (a *Analyzer) Analyze(ctx context.Context, partyName, docText string) (string, error) {
	prompt := strings.Replace(reportPrompt, "%PARTY%", partyName, 1)
	prompt = strings.Replace(prompt, "%DOC%", docText, 1)
	return a.llm.Complete(ctx, prompt, reportTemperature)
}
