package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DefaultRelevanceThreshold is the minimum career-relevance score used when
// callers do not pass their own.
const DefaultRelevanceThreshold = 0.5

// Store owns the in-memory subject list for one session. Load is idempotent
// and safe to call concurrently: the first caller performs the load, everyone
// else waits for the same result. On failure the store settles to an empty
// list and surfaces the error; filters then simply return nothing, so
// rendering code never sees the failure directly.
type Store struct {
	source Source

	mu       sync.Mutex
	loading  chan struct{} // closed when the in-flight load finishes
	loaded   bool
	subjects []Subject
	loadErr  error
}

// NewStore creates a store over the given source. Nothing is loaded until
// the first Load call.
func NewStore(source Source) *Store {
	return &Store{source: source}
}

// Load fetches the subject list on first call; concurrent and subsequent
// callers receive the settled result of that first load rather than issuing
// duplicate loads.
func (s *Store) Load(ctx context.Context) ([]Subject, error) {
	s.mu.Lock()
	if s.loaded {
		defer s.mu.Unlock()
		return s.subjects, s.loadErr
	}
	if s.loading != nil {
		wait := s.loading
		s.mu.Unlock()
		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.subjects, s.loadErr
	}

	done := make(chan struct{})
	s.loading = done
	s.mu.Unlock()

	start := time.Now()
	subjects, err := s.source.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		slog.Warn("catalog: load failed, settling to empty list", "error", err)
		s.subjects = []Subject{}
		s.loadErr = fmt.Errorf("loading catalog: %w", err)
	} else {
		slog.Info("catalog: loaded", "subjects", len(subjects),
			"elapsed", time.Since(start).Round(time.Millisecond))
		s.subjects = subjects
		s.loadErr = nil
	}
	s.loaded = true
	close(done)
	return s.subjects, s.loadErr
}

// Loaded reports whether the initial load has settled (success or failure).
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Replace swaps the subject list wholesale. Used after enrichment; the old
// slice is never partially mutated.
func (s *Store) Replace(subjects []Subject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subjects = subjects
	s.loaded = true
	s.loadErr = nil
}

// snapshot returns the current subject slice. Callers must treat it as
// read-only.
func (s *Store) snapshot() []Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subjects
}

// All returns every loaded subject.
func (s *Store) All() []Subject {
	return s.snapshot()
}

// Len returns the number of loaded subjects.
func (s *Store) Len() int {
	return len(s.snapshot())
}

// FindByID resolves a subject id. The second result is false when the id is
// not in the currently loaded catalog; node ids are weak references and may
// legitimately fail to resolve.
func (s *Store) FindByID(id string) (*Subject, bool) {
	for _, subj := range s.snapshot() {
		if subj.ID == id {
			found := subj
			return &found, true
		}
	}
	return nil, false
}

// FilterByYear returns subjects taught in the given year.
func (s *Store) FilterByYear(year int) []Subject {
	var out []Subject
	for _, subj := range s.snapshot() {
		if subj.Year == year {
			out = append(out, subj)
		}
	}
	return out
}

// FilterByYearSemester returns subjects taught in the given year and semester.
func (s *Store) FilterByYearSemester(year, semester int) []Subject {
	var out []Subject
	for _, subj := range s.snapshot() {
		if subj.Year == year && subj.Semester == semester {
			out = append(out, subj)
		}
	}
	return out
}

// FilterByKeywords returns subjects where any keyword matches any of name,
// description, or the subject's own keywords, case-insensitively.
func (s *Store) FilterByKeywords(keywords []string) []Subject {
	var out []Subject
	for _, subj := range s.snapshot() {
		for _, kw := range keywords {
			if subj.MatchesKeyword(kw) {
				out = append(out, subj)
				break
			}
		}
	}
	return out
}

// TotalCredits sums credits over all loaded subjects.
func (s *Store) TotalCredits() int {
	sum := 0
	for _, subj := range s.snapshot() {
		sum += subj.Credits
	}
	return sum
}

// FilterByCareerRelevance keeps subjects whose recorded relevance score for
// the occupation is at least threshold, sorted descending by that score.
// Subjects with no recorded score are excluded, not treated as zero. Ties
// keep original catalog order.
func (s *Store) FilterByCareerRelevance(occupation string, threshold float64) []Subject {
	type scored struct {
		subject Subject
		score   float64
	}

	var kept []scored
	for _, subj := range s.snapshot() {
		score, ok := subj.RelevanceFor(occupation)
		if !ok || score < threshold {
			continue
		}
		kept = append(kept, scored{subj, score})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	out := make([]Subject, len(kept))
	for i, k := range kept {
		out[i] = k.subject
	}
	return out
}
