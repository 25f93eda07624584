// Package pathway turns a target occupation into an interactive study
// roadmap: it loads a subject catalog, asks an LLM to select and sequence
// subjects, interprets the reply into a structured roadmap, and tracks
// selection and completion state for rendering.
package pathway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/brunobiangulo/pathway/catalog"
	"github.com/brunobiangulo/pathway/llm"
	"github.com/brunobiangulo/pathway/roadmap"
)

// State is the session lifecycle state.
type State int

const (
	// StateIdle: session constructed, catalog load not yet started.
	StateIdle State = iota
	// StateLoading: catalog load in flight.
	StateLoading
	// StateReady: catalog settled (possibly empty), no roadmap yet.
	StateReady
	// StateGenerating: AI roadmap request in flight.
	StateGenerating
	// StateDisplaying: a roadmap is present.
	StateDisplaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateGenerating:
		return "generating"
	case StateDisplaying:
		return "displaying"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session owns one user's planning state: the catalog store, the current
// roadmap, and the active selection. The roadmap is replaced wholesale on
// each generation and mutated only through copy-on-write completion toggles,
// so readers never observe partial updates.
type Session struct {
	cfg   Config
	store *catalog.Store
	chat  llm.Provider
	embed llm.Provider

	// genMu serializes AI calls: a new generation or enrichment request
	// starts only after the prior one resolves. No cancellation.
	genMu sync.Mutex

	mu         sync.Mutex
	state      State
	current    *roadmap.Roadmap
	selectedID string
}

// Option configures a Session, mainly to substitute collaborators in tests.
type Option func(*Session)

// WithCatalogStore substitutes the catalog store.
func WithCatalogStore(store *catalog.Store) Option {
	return func(s *Session) { s.store = store }
}

// WithChatProvider substitutes the chat LLM.
func WithChatProvider(p llm.Provider) Option {
	return func(s *Session) { s.chat = p }
}

// WithEmbedProvider substitutes the embedding LLM.
func WithEmbedProvider(p llm.Provider) Option {
	return func(s *Session) { s.embed = p }
}

// NewSession builds a session from configuration. A missing API credential
// for a provider that needs one disables generation rather than failing:
// catalog loading and browsing stay available.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	s := &Session{cfg: cfg, state: StateIdle}
	for _, o := range opts {
		o(s)
	}

	if s.store == nil {
		src, err := catalogSource(cfg.Catalog)
		if err != nil {
			return nil, err
		}
		s.store = catalog.NewStore(src)
	}

	if s.chat == nil && cfg.Chat.Provider != "" {
		if llm.RequiresAPIKey(cfg.Chat.Provider) && cfg.Chat.APIKey == "" {
			slog.Warn("session: no API credential, roadmap generation disabled",
				"provider", cfg.Chat.Provider)
		} else {
			chat, err := llm.NewProvider(llm.Config{
				Provider: cfg.Chat.Provider,
				Model:    cfg.Chat.Model,
				BaseURL:  cfg.Chat.BaseURL,
				APIKey:   cfg.Chat.APIKey,
			})
			if err != nil {
				return nil, fmt.Errorf("creating chat provider: %w", err)
			}
			s.chat = chat
		}
	}

	if s.embed == nil && cfg.Embedding.Provider != "" {
		if llm.RequiresAPIKey(cfg.Embedding.Provider) && cfg.Embedding.APIKey == "" {
			slog.Debug("session: no embedding credential, semantic shortlisting disabled")
		} else {
			embed, err := llm.NewProvider(llm.Config{
				Provider: cfg.Embedding.Provider,
				Model:    cfg.Embedding.Model,
				BaseURL:  cfg.Embedding.BaseURL,
				APIKey:   cfg.Embedding.APIKey,
			})
			if err != nil {
				return nil, fmt.Errorf("creating embedding provider: %w", err)
			}
			s.embed = embed
		}
	}

	return s, nil
}

// catalogSource picks the source implied by the catalog configuration.
func catalogSource(cfg CatalogConfig) (catalog.Source, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(cfg.Path), ".xlsx"):
		return &catalog.XLSXSource{Path: cfg.Path}, nil
	case cfg.Path != "":
		return &catalog.FileSource{Path: cfg.Path}, nil
	case cfg.URL != "":
		return &catalog.HTTPSource{URL: cfg.URL}, nil
	default:
		return nil, fmt.Errorf("pathway: no catalog source configured")
	}
}

// Start loads the catalog. On failure the store settles to an empty list and
// the session still reaches Ready: the error is surfaced for a banner, not a
// crash, and browsing of an empty catalog remains possible.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	_, err := s.store.Load(ctx)

	if err == nil && s.cfg.Catalog.HandbookPath != "" {
		enriched, herr := catalog.ImportHandbook(s.cfg.Catalog.HandbookPath, s.store.All())
		if herr != nil {
			slog.Warn("session: handbook import failed (non-fatal)", "error", herr)
		} else {
			s.store.Replace(enriched)
		}
	}

	s.mu.Lock()
	s.state = StateReady
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}
	return nil
}

// GenerateEnabled reports whether roadmap generation is available. It is
// false when no chat provider is configured or its credential is missing.
func (s *Session) GenerateEnabled() bool {
	return s.chat != nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the current roadmap, or nil. Callers must treat it as
// read-only; completion toggles go through ToggleCompleted.
func (s *Session) Current() *roadmap.Roadmap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Catalog exposes the session's catalog store for browsing and filtering.
func (s *Session) Catalog() *catalog.Store {
	return s.store
}

// Generate asks the AI collaborator for a roadmap targeting the occupation.
// The occupation is trimmed; an empty string is rejected before any request,
// as is a zero-subject catalog. On success the new roadmap fully replaces
// the old one, clearing any active selection. On any failure the prior
// roadmap, if any, is preserved.
func (s *Session) Generate(ctx context.Context, occupation string) (*roadmap.Roadmap, error) {
	occupation = strings.TrimSpace(occupation)
	if occupation == "" {
		return nil, ErrEmptyOccupation
	}

	s.mu.Lock()
	if s.state == StateIdle || s.state == StateLoading {
		s.mu.Unlock()
		return nil, ErrCatalogNotReady
	}
	s.mu.Unlock()

	if s.chat == nil {
		return nil, ErrMissingCredential
	}
	if s.store.Len() == 0 {
		return nil, ErrEmptyCatalog
	}

	// One AI call at a time: a new request starts after the prior resolves.
	s.genMu.Lock()
	defer s.genMu.Unlock()

	s.setGenerating()
	defer s.settle()

	subjects := s.promptSubjects(ctx, occupation)
	subjectsJSON, err := json.Marshal(subjects)
	if err != nil {
		return nil, fmt.Errorf("serializing subjects: %w", err)
	}

	slog.Info("generate: requesting roadmap",
		"occupation", occupation, "subjects", len(subjects))
	start := time.Now()

	resp, err := s.chat.Chat(ctx, llmChatRequest(roadmap.GenerationPrompt(occupation, subjectsJSON)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMRequestFailed, err)
	}

	rm, err := roadmap.Interpret(resp.Content)
	if err != nil {
		return nil, err
	}
	if rm.Occupation == "" {
		rm.Occupation = occupation
	}
	if sum := rm.NodeCreditSum(); rm.TotalCredits != sum {
		// The declared total is trusted for display but drift is worth noting.
		slog.Warn("generate: declared total_credits disagrees with node sum",
			"declared", rm.TotalCredits, "node_sum", sum)
	}

	slog.Info("generate: roadmap ready",
		"occupation", occupation, "nodes", len(rm.Nodes),
		"tokens", resp.TotalTokens, "elapsed", time.Since(start).Round(time.Millisecond))

	s.mu.Lock()
	s.current = rm
	s.selectedID = ""
	s.state = StateDisplaying
	s.mu.Unlock()
	return rm, nil
}

// llmChatRequest wraps a prompt into the deterministic-JSON request shape
// every AI call in the session uses.
func llmChatRequest(prompt string) llm.ChatRequest {
	return llm.ChatRequest{
		Messages:       []llm.Message{{Role: "user", Content: prompt}},
		Temperature:    0,
		ResponseFormat: "json_object",
	}
}

// setGenerating moves the session into StateGenerating.
func (s *Session) setGenerating() {
	s.mu.Lock()
	s.state = StateGenerating
	s.mu.Unlock()
}

// settle returns the session to the state implied by its roadmap. After a
// successful generation this is a no-op (Generate already set Displaying);
// after a failure it restores Displaying or Ready.
func (s *Session) settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateGenerating {
		return
	}
	if s.current != nil {
		s.state = StateDisplaying
	} else {
		s.state = StateReady
	}
}

// promptSubjects returns the subjects serialized into the generation prompt.
// When the catalog exceeds the configured cap, an in-memory index shortlists
// by keyword match on the occupation, topped up with semantic neighbours
// when an embedding provider is available. Shortlisting failures fall back
// to the full catalog.
func (s *Session) promptSubjects(ctx context.Context, occupation string) []catalog.Subject {
	all := s.store.All()
	limit := s.cfg.MaxPromptSubjects
	if limit <= 0 || len(all) <= limit {
		return all
	}

	idx, err := catalog.NewIndex(all, s.cfg.EmbeddingDim)
	if err != nil {
		slog.Warn("generate: shortlist index unavailable, sending full catalog", "error", err)
		return all
	}
	defer idx.Close()

	var picked []string
	if ids, err := idx.KeywordSearch(ctx, occupation, limit); err != nil {
		slog.Warn("generate: keyword shortlist failed", "error", err)
	} else {
		picked = ids
	}

	if s.embed != nil && len(picked) < limit {
		if vecs, err := s.embed.Embed(ctx, []string{occupation}); err != nil || len(vecs) == 0 {
			slog.Warn("generate: occupation embedding failed", "error", err)
		} else {
			for _, subj := range all {
				text := subj.Name + ": " + subj.Description
				emb, eerr := s.embed.Embed(ctx, []string{text})
				if eerr != nil || len(emb) == 0 {
					continue
				}
				if aerr := idx.AddEmbedding(ctx, subj.ID, emb[0]); aerr != nil {
					continue
				}
			}
			if ids, serr := idx.SemanticSearch(ctx, vecs[0], limit); serr == nil {
				picked = append(picked, ids...)
			}
		}
	}

	seen := make(map[string]bool, limit)
	shortlist := make([]catalog.Subject, 0, limit)
	add := func(id string) {
		if seen[id] || len(shortlist) >= limit {
			return
		}
		if subj, ok := s.store.FindByID(id); ok {
			seen[id] = true
			shortlist = append(shortlist, *subj)
		}
	}
	for _, id := range picked {
		add(id)
	}
	// Top up in catalog order so the prompt always carries cap subjects.
	for _, subj := range all {
		if len(shortlist) >= limit {
			break
		}
		add(subj.ID)
	}

	slog.Debug("generate: shortlisted subjects",
		"total", len(all), "shortlist", len(shortlist))
	return shortlist
}

// Select marks a node as the active selection and resolves its subject from
// the catalog. The node id is a weak reference: the second result is false
// when the subject is not in the currently loaded catalog, and the caller
// renders a reduced detail panel from the node alone.
func (s *Session) Select(nodeID string) (*catalog.Subject, bool) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, false
	}
	s.selectedID = nodeID
	s.mu.Unlock()
	return s.store.FindByID(nodeID)
}

// ClearSelection drops the active selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selectedID = ""
	s.mu.Unlock()
}

// ToggleCompleted flips a node's completed flag through a copy of the node
// list; no node is ever mutated in place.
func (s *Session) ToggleCompleted(nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNoRoadmap
	}
	next, ok := s.current.ToggleCompleted(nodeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	s.current = next
	return nil
}

// Progress summarises completion. Derived from current state on every read,
// never stored. TotalCredits is the roadmap's declared value.
type Progress struct {
	CompletedNodes   int `json:"completed_nodes"`
	TotalNodes       int `json:"total_nodes"`
	CompletedCredits int `json:"completed_credits"`
	TotalCredits     int `json:"total_credits"`
}

// Progress computes the current completion metrics.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Progress{}
	}
	count, credits := s.current.CompletedStats()
	return Progress{
		CompletedNodes:   count,
		TotalNodes:       len(s.current.Nodes),
		CompletedCredits: credits,
		TotalCredits:     s.current.TotalCredits,
	}
}

// NodeView is a roadmap node with its layout position.
type NodeView struct {
	roadmap.Node
	X int `json:"x"`
	Y int `json:"y"`
}

// SelectionDetail is the active node selection with its resolved subject.
// Subject is nil when the weak reference does not resolve.
type SelectionDetail struct {
	NodeID  string           `json:"node_id"`
	Subject *catalog.Subject `json:"subject,omitempty"`
}

// ViewModel is a render-ready snapshot of the session.
type ViewModel struct {
	State       State            `json:"state"`
	Occupation  string           `json:"occupation,omitempty"`
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	Nodes       []NodeView       `json:"nodes,omitempty"`
	Edges       []roadmap.Edge   `json:"edges,omitempty"`
	Selected    *SelectionDetail `json:"selected,omitempty"`
	Progress    Progress         `json:"progress"`
}

// ViewModel lays out the current roadmap and resolves the selection.
// Positions are always recomputed; nothing from the model reply is trusted
// for layout.
func (s *Session) ViewModel() *ViewModel {
	s.mu.Lock()
	rm := s.current
	state := s.state
	selected := s.selectedID
	s.mu.Unlock()

	vm := &ViewModel{State: state}
	if rm == nil {
		return vm
	}

	positions := roadmap.Layout(rm)
	vm.Occupation = rm.Occupation
	vm.Title = rm.Title
	vm.Description = rm.Description
	vm.Edges = roadmap.Edges(rm, positions)
	vm.Nodes = make([]NodeView, len(rm.Nodes))
	for i, n := range rm.Nodes {
		p := positions[n.ID]
		vm.Nodes[i] = NodeView{Node: n, X: p.X, Y: p.Y}
	}
	if selected != "" {
		detail := &SelectionDetail{NodeID: selected}
		if subj, ok := s.store.FindByID(selected); ok {
			detail.Subject = subj
		}
		vm.Selected = detail
	}

	count, credits := rm.CompletedStats()
	vm.Progress = Progress{
		CompletedNodes:   count,
		TotalNodes:       len(rm.Nodes),
		CompletedCredits: credits,
		TotalCredits:     rm.TotalCredits,
	}
	return vm
}
