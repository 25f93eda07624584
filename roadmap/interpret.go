package roadmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// ErrInvalidResponse is returned when a model reply cannot be coerced into
// a roadmap by any extraction strategy, or when the extracted JSON lacks a
// nodes list. Callers must not fall back to a partial roadmap.
var ErrInvalidResponse = errors.New("roadmap: invalid AI response")

// An extractor pulls a JSON candidate out of raw model text. Extractors run
// in order; the first one whose candidate is syntactically valid JSON wins.
// New heuristics slot into the list without touching control flow.
type extractor struct {
	name string
	fn   func(string) (string, bool)
}

var extractors = []extractor{
	{"document", extractDocument},
	{"fenced-block", extractFencedBlock},
	{"braced-span", extractBracedSpan},
}

// codeBlockRe matches a markdown code fence, optionally tagged json.
var codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// extractDocument treats the whole reply as the candidate.
func extractDocument(raw string) (string, bool) {
	return strings.TrimSpace(raw), true
}

// extractFencedBlock pulls the inner content of the first code fence.
func extractFencedBlock(raw string) (string, bool) {
	if m := codeBlockRe.FindStringSubmatch(raw); len(m) > 1 {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// extractBracedSpan scans for the first balanced {...} span, respecting
// string literals and escapes.
func extractBracedSpan(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// Interpret recovers a roadmap from the raw text of a model reply. The reply
// should be a bare JSON document, but models wrap JSON in prose and code
// fences often enough that two fallback extractions are attempted before
// giving up. After the first syntactic success the result is shape-checked:
// a nodes list must be present. Extra or missing optional fields are
// tolerated; this is shape validation, not schema validation.
func Interpret(raw string) (*Roadmap, error) {
	for _, ex := range extractors {
		candidate, ok := ex.fn(raw)
		if !ok || candidate == "" {
			continue
		}
		if !json.Valid([]byte(candidate)) {
			continue
		}

		slog.Debug("interpret: JSON extracted", "strategy", ex.name, "bytes", len(candidate))
		rm, err := decodeRoadmap([]byte(candidate))
		if err != nil {
			return nil, err
		}
		return rm, nil
	}
	return nil, fmt.Errorf("%w: no JSON document found in reply", ErrInvalidResponse)
}

// decodeRoadmap shape-checks and decodes an extracted JSON candidate.
func decodeRoadmap(data []byte) (*Roadmap, error) {
	var probe struct {
		Nodes json.RawMessage `json:"nodes"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: reply is not a JSON object", ErrInvalidResponse)
	}
	if len(probe.Nodes) == 0 {
		return nil, fmt.Errorf("%w: missing nodes field", ErrInvalidResponse)
	}
	if trimmed := bytes.TrimSpace(probe.Nodes); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: nodes is not a list", ErrInvalidResponse)
	}

	var rm Roadmap
	if err := json.Unmarshal(data, &rm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &rm, nil
}

// RelevanceUpdate is the reply shape of the narrower enrichment prompt: a
// relevance score and justification per occupation for a single subject.
type RelevanceUpdate struct {
	CareerRelevance       map[string]float64 `json:"career_relevance"`
	CareerRelevanceReason map[string]string  `json:"career_relevance_reason"`
}

// InterpretRelevance recovers a relevance update from a model reply using
// the same extraction strategies as Interpret.
func InterpretRelevance(raw string) (*RelevanceUpdate, error) {
	for _, ex := range extractors {
		candidate, ok := ex.fn(raw)
		if !ok || candidate == "" {
			continue
		}
		if !json.Valid([]byte(candidate)) {
			continue
		}

		var upd RelevanceUpdate
		if err := json.Unmarshal([]byte(candidate), &upd); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		if upd.CareerRelevance == nil {
			return nil, fmt.Errorf("%w: missing career_relevance field", ErrInvalidResponse)
		}
		return &upd, nil
	}
	return nil, fmt.Errorf("%w: no JSON document found in reply", ErrInvalidResponse)
}
