package engine

import (
	"context"
	"encoding/json"
	"strings"
)

const extractionSystemPrompt = `You are a fact extraction engine. Given a piece of text, extract the
discrete factual claims it contains. Respond with a JSON array of objects,
each with a "fact" string field and an "intensity" number field in [0, 1]
estimating how strongly the text asserts the fact. Respond with the JSON
array only, no commentary.`

const classificationSystemPrompt = `You are a conflict classifier for a memory store. Given a NEW fact and an
EXISTING fact, respond with exactly one word: DUPLICATE if they state the
same thing, SUPERSEDES if the new fact replaces/contradicts the existing
one, or DISTINCT if they are unrelated. Respond with that single word
only.`

// extractFacts prompts the LLM capability to pull discrete factual
// claims out of text. A response that does not parse to a JSON array
// (including markdown-fenced or object-wrapped JSON) yields zero facts,
// not an error. Entries missing fact/intensity, or whose fact is empty
// after trimming, are discarded; intensity is clamped to [0, 1].
func (e *Engine) extractFacts(ctxArg context.Context, text string) ([]ExtractedFact, error) {
	if err := ctxArg.Err(); err != nil {
		return nil, ErrCancelled
	}
	if e.llm == nil {
		return nil, nil
	}

	raw, err := e.llm.Complete(ctxArg, []Message{{Role: "user", Content: text}}, extractionSystemPrompt)
	if err != nil {
		if ctxArg.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, err
	}

	return parseExtractedFacts(raw), nil
}

func parseExtractedFacts(raw string) []ExtractedFact {
	stripped := stripCodeFences(raw)

	var rawEntries []map[string]any
	if err := json.Unmarshal([]byte(stripped), &rawEntries); err != nil {
		return nil
	}

	var facts []ExtractedFact
	for _, entry := range rawEntries {
		factVal, ok := entry["fact"].(string)
		if !ok {
			continue
		}
		factVal = strings.TrimSpace(factVal)
		if factVal == "" {
			continue
		}
		intensityVal, ok := entry["intensity"].(float64)
		if !ok {
			continue
		}
		facts = append(facts, ExtractedFact{
			Fact:      factVal,
			Intensity: clampIntensity(intensityVal),
		})
	}
	return facts
}

// stripCodeFences removes a single leading/trailing markdown code fence
// (``` or ```json) around the response body, if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		firstLine := strings.TrimSpace(s[:nl])
		if firstLine == "" || strings.EqualFold(firstLine, "json") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// classifyConflict prompts the LLM capability to classify the
// relationship between a new fact and the best-matching existing fact.
// The first whitespace-delimited token of the response is stripped of
// non-letters, upper-cased, and matched against the three verdicts;
// anything else (including empty responses) defaults to DISTINCT.
func (e *Engine) classifyConflict(ctxArg context.Context, newFact, existingFact string) (Verdict, error) {
	if err := ctxArg.Err(); err != nil {
		return "", ErrCancelled
	}
	if e.llm == nil {
		return VerdictDistinct, nil
	}

	prompt := "NEW: " + newFact + "\nEXISTING: " + existingFact
	raw, err := e.llm.Complete(ctxArg, []Message{{Role: "user", Content: prompt}}, classificationSystemPrompt)
	if err != nil {
		if ctxArg.Err() != nil {
			return "", ErrCancelled
		}
		return "", err
	}

	return parseVerdict(raw), nil
}

func parseVerdict(raw string) Verdict {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return VerdictDistinct
	}
	token := stripNonLetters(fields[0])
	switch strings.ToUpper(token) {
	case string(VerdictDuplicate):
		return VerdictDuplicate
	case string(VerdictSupersedes):
		return VerdictSupersedes
	default:
		return VerdictDistinct
	}
}

func stripNonLetters(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
