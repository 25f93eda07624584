package pathway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/brunobiangulo/pathway/catalog"
	"github.com/brunobiangulo/pathway/roadmap"
)

// EnrichReport summarises a catalog enrichment run.
type EnrichReport struct {
	Total    int           `json:"total"`
	Enriched int           `json:"enriched"`
	Failed   int           `json:"failed"`
	Elapsed  time.Duration `json:"elapsed"`
}

// EnrichCatalog asks the AI collaborator for career-relevance scores, one
// subject at a time, and replaces the catalog with the annotated copy. An
// empty occupation requests scores for every occupation the model finds
// pertinent. Per-subject failures are isolated: the original record is kept
// and the run continues. Only a fully assembled new list ever reaches the
// store.
func (s *Session) EnrichCatalog(ctx context.Context, occupation string) (*EnrichReport, error) {
	if s.chat == nil {
		return nil, ErrMissingCredential
	}
	if !s.store.Loaded() {
		return nil, ErrCatalogNotReady
	}
	subjects := s.store.All()
	if len(subjects) == 0 {
		return nil, ErrEmptyCatalog
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()

	start := time.Now()
	report := &EnrichReport{Total: len(subjects)}
	enriched := make([]catalog.Subject, len(subjects))

	for i, subj := range subjects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		enriched[i] = subj

		upd, err := s.rateSubject(ctx, subj, occupation)
		if err != nil {
			slog.Warn("enrich: subject skipped", "subject", subj.ID, "error", err)
			report.Failed++
			continue
		}
		enriched[i] = mergeRelevance(subj, upd)
		report.Enriched++
	}

	s.store.Replace(enriched)
	report.Elapsed = time.Since(start).Round(time.Millisecond)
	slog.Info("enrich: catalog annotated",
		"total", report.Total, "enriched", report.Enriched, "failed", report.Failed,
		"elapsed", report.Elapsed)
	return report, nil
}

// rateSubject runs one relevance request and interprets the reply.
func (s *Session) rateSubject(ctx context.Context, subj catalog.Subject, occupation string) (*roadmap.RelevanceUpdate, error) {
	subjJSON, err := json.Marshal(subj)
	if err != nil {
		return nil, fmt.Errorf("serializing subject: %w", err)
	}

	resp, err := s.chat.Chat(ctx, llmChatRequest(roadmap.EnrichmentPrompt(subjJSON, occupation)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMRequestFailed, err)
	}
	return roadmap.InterpretRelevance(resp.Content)
}

// mergeRelevance overlays new scores on a copy of the subject; existing keys
// the update does not mention are preserved.
func mergeRelevance(subj catalog.Subject, upd *roadmap.RelevanceUpdate) catalog.Subject {
	out := subj
	out.CareerRelevance = make(map[string]float64, len(subj.CareerRelevance)+len(upd.CareerRelevance))
	for k, v := range subj.CareerRelevance {
		out.CareerRelevance[k] = v
	}
	for k, v := range upd.CareerRelevance {
		out.CareerRelevance[k] = v
	}
	out.CareerRelevanceReason = make(map[string]string, len(subj.CareerRelevanceReason)+len(upd.CareerRelevanceReason))
	for k, v := range subj.CareerRelevanceReason {
		out.CareerRelevanceReason[k] = v
	}
	for k, v := range upd.CareerRelevanceReason {
		out.CareerRelevanceReason[k] = v
	}
	return out
}
