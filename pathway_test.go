package pathway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/brunobiangulo/pathway/catalog"
	"github.com/brunobiangulo/pathway/llm"
	"github.com/brunobiangulo/pathway/roadmap"
)

// fakeChat replays canned replies in order. When the replies run out the
// last one repeats. A non-nil err fails every call.
type fakeChat struct {
	replies []string
	err     error
	calls   int
}

func (f *fakeChat) Chat(_ context.Context, _ llm.ChatRequest) (*llm.ChatResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls - 1
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	return &llm.ChatResponse{Content: f.replies[i], TotalTokens: 42}, nil
}

func (f *fakeChat) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embeddings not supported")
}

const roadmapReply = `{
	"title": "Backend Path",
	"description": "Subjects for backend work.",
	"occupation": "Software Engineer",
	"nodes": [
		{"id": "cs101", "name": "Intro to Programming", "type": "foundation", "completed": false, "connects": ["cs201"], "credits": 6, "year": 1, "semester": 1, "relevance_score": 0.9},
		{"id": "cs201", "name": "Data Structures", "type": "core", "completed": false, "connects": [], "credits": 6, "year": 2, "semester": 1, "relevance_score": 0.95}
	],
	"total_credits": 12,
	"reasoning": "Both are central to software engineering."
}`

func sessionSubjects() []catalog.Subject {
	return []catalog.Subject{
		{ID: "cs101", Name: "Intro to Programming", Credits: 6, Year: 1, Semester: 1},
		{ID: "cs201", Name: "Data Structures", Credits: 6, Year: 2, Semester: 1},
	}
}

// newTestSession builds a started session over a static catalog and the
// given chat fake.
func newTestSession(t *testing.T, chat llm.Provider, subjects []catalog.Subject) *Session {
	t.Helper()
	store := catalog.NewStore(&catalog.StaticSource{Subjects: subjects})
	s, err := NewSession(Config{}, WithCatalogStore(store), WithChatProvider(chat))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func TestSessionLifecycle(t *testing.T) {
	store := catalog.NewStore(&catalog.StaticSource{Subjects: sessionSubjects()})
	s, err := NewSession(Config{}, WithCatalogStore(store),
		WithChatProvider(&fakeChat{replies: []string{roadmapReply}}))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.State() != StateIdle {
		t.Fatalf("state before Start = %v, want idle", s.State())
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.State() != StateReady {
		t.Fatalf("state after Start = %v, want ready", s.State())
	}

	rm, err := s.Generate(context.Background(), "Software Engineer")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if s.State() != StateDisplaying {
		t.Errorf("state after Generate = %v, want displaying", s.State())
	}
	if len(rm.Nodes) != 2 || rm.TotalCredits != 12 {
		t.Errorf("unexpected roadmap: %+v", rm)
	}
	if s.Current() != rm {
		t.Error("Current() does not return the generated roadmap")
	}
}

func TestGenerateTrimsAndRejectsEmptyOccupation(t *testing.T) {
	s := newTestSession(t, &fakeChat{replies: []string{roadmapReply}}, sessionSubjects())
	for _, occ := range []string{"", "   ", "\t\n"} {
		if _, err := s.Generate(context.Background(), occ); !errors.Is(err, ErrEmptyOccupation) {
			t.Errorf("Generate(%q) error = %v, want ErrEmptyOccupation", occ, err)
		}
	}
}

func TestGenerateBeforeCatalogReady(t *testing.T) {
	store := catalog.NewStore(&catalog.StaticSource{Subjects: sessionSubjects()})
	s, err := NewSession(Config{}, WithCatalogStore(store),
		WithChatProvider(&fakeChat{replies: []string{roadmapReply}}))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if _, err := s.Generate(context.Background(), "Nurse"); !errors.Is(err, ErrCatalogNotReady) {
		t.Fatalf("Generate before Start error = %v, want ErrCatalogNotReady", err)
	}
}

func TestGenerateWithoutProvider(t *testing.T) {
	store := catalog.NewStore(&catalog.StaticSource{Subjects: sessionSubjects()})
	s, err := NewSession(Config{
		Chat: LLMConfig{Provider: "openai", Model: "gpt-4o-mini"}, // no API key
	}, WithCatalogStore(store))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.GenerateEnabled() {
		t.Error("GenerateEnabled() = true without a credential")
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Generate(context.Background(), "Nurse"); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("Generate error = %v, want ErrMissingCredential", err)
	}
}

func TestGenerateEmptyCatalog(t *testing.T) {
	s := newTestSession(t, &fakeChat{replies: []string{roadmapReply}}, nil)
	if _, err := s.Generate(context.Background(), "Nurse"); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("Generate error = %v, want ErrEmptyCatalog", err)
	}
}

func TestGenerateFailurePreservesPriorRoadmap(t *testing.T) {
	chat := &fakeChat{replies: []string{roadmapReply}}
	s := newTestSession(t, chat, sessionSubjects())

	first, err := s.Generate(context.Background(), "Software Engineer")
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}

	chat.err = errors.New("upstream down")
	if _, err := s.Generate(context.Background(), "Data Analyst"); !errors.Is(err, ErrLLMRequestFailed) {
		t.Fatalf("second Generate error = %v, want ErrLLMRequestFailed", err)
	}
	if s.Current() != first {
		t.Error("failed generation replaced the prior roadmap")
	}
	if s.State() != StateDisplaying {
		t.Errorf("state after failed generation = %v, want displaying", s.State())
	}
}

func TestGenerateInvalidReplySettlesReady(t *testing.T) {
	s := newTestSession(t, &fakeChat{replies: []string{"I cannot answer that."}}, sessionSubjects())
	if _, err := s.Generate(context.Background(), "Nurse"); !errors.Is(err, roadmap.ErrInvalidResponse) {
		t.Fatalf("Generate error = %v, want ErrInvalidResponse", err)
	}
	if s.Current() != nil {
		t.Error("invalid reply produced a roadmap")
	}
	if s.State() != StateReady {
		t.Errorf("state = %v, want ready", s.State())
	}
}

func TestGenerateFillsOccupation(t *testing.T) {
	reply := `{"title": "T", "description": "D", "nodes": [{"id": "cs101", "name": "Intro", "type": "core", "credits": 6, "year": 1, "semester": 1}], "total_credits": 6}`
	s := newTestSession(t, &fakeChat{replies: []string{reply}}, sessionSubjects())
	rm, err := s.Generate(context.Background(), "  Nurse ")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if rm.Occupation != "Nurse" {
		t.Errorf("Occupation = %q, want the trimmed request occupation", rm.Occupation)
	}
}

func TestNewRoadmapClearsSelection(t *testing.T) {
	s := newTestSession(t, &fakeChat{replies: []string{roadmapReply}}, sessionSubjects())
	if _, err := s.Generate(context.Background(), "Software Engineer"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, ok := s.Select("cs101"); !ok {
		t.Fatal("Select(cs101) did not resolve")
	}
	if vm := s.ViewModel(); vm.Selected == nil || vm.Selected.NodeID != "cs101" {
		t.Fatalf("selection not reflected in view model: %+v", vm.Selected)
	}

	if _, err := s.Generate(context.Background(), "Data Analyst"); err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if vm := s.ViewModel(); vm.Selected != nil {
		t.Error("selection survived roadmap replacement")
	}
}

func TestSelectWeakReference(t *testing.T) {
	s := newTestSession(t, &fakeChat{replies: []string{roadmapReply}}, sessionSubjects())
	if _, err := s.Generate(context.Background(), "Software Engineer"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	subj, ok := s.Select("cs999")
	if ok || subj != nil {
		t.Errorf("Select(cs999) = (%v, %v), want unresolved", subj, ok)
	}
	// The selection itself still sticks; the detail panel just has no subject.
	vm := s.ViewModel()
	if vm.Selected == nil || vm.Selected.NodeID != "cs999" || vm.Selected.Subject != nil {
		t.Errorf("view model selection = %+v, want bare node id", vm.Selected)
	}

	s.ClearSelection()
	if vm := s.ViewModel(); vm.Selected != nil {
		t.Error("ClearSelection left a selection behind")
	}
}

func TestToggleCompletedAndProgress(t *testing.T) {
	s := newTestSession(t, &fakeChat{replies: []string{roadmapReply}}, sessionSubjects())

	if err := s.ToggleCompleted("cs101"); !errors.Is(err, ErrNoRoadmap) {
		t.Fatalf("toggle without roadmap error = %v, want ErrNoRoadmap", err)
	}

	if _, err := s.Generate(context.Background(), "Software Engineer"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if err := s.ToggleCompleted("nope"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("toggle unknown node error = %v, want ErrNodeNotFound", err)
	}

	before := s.Current()
	if err := s.ToggleCompleted("cs101"); err != nil {
		t.Fatalf("ToggleCompleted: %v", err)
	}
	if before.Nodes[0].Completed {
		t.Error("toggle mutated the prior roadmap value in place")
	}

	got := s.Progress()
	want := Progress{CompletedNodes: 1, TotalNodes: 2, CompletedCredits: 6, TotalCredits: 12}
	if got != want {
		t.Errorf("Progress() = %+v, want %+v", got, want)
	}

	// Toggling back returns to zero completion.
	if err := s.ToggleCompleted("cs101"); err != nil {
		t.Fatalf("ToggleCompleted back: %v", err)
	}
	if got := s.Progress(); got.CompletedNodes != 0 || got.CompletedCredits != 0 {
		t.Errorf("Progress() after untoggle = %+v", got)
	}
}

func TestViewModelLayout(t *testing.T) {
	s := newTestSession(t, &fakeChat{replies: []string{roadmapReply}}, sessionSubjects())
	if _, err := s.Generate(context.Background(), "Software Engineer"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	vm := s.ViewModel()
	if vm.State != StateDisplaying {
		t.Errorf("view model state = %v", vm.State)
	}
	pos := map[string][2]int{}
	for _, n := range vm.Nodes {
		pos[n.ID] = [2]int{n.X, n.Y}
	}
	// Year 1 sem 1 is row 0, year 2 sem 1 row 1; both alone in column 0.
	if pos["cs101"] != [2]int{100, 100} {
		t.Errorf("cs101 at %v, want {100 100}", pos["cs101"])
	}
	if pos["cs201"] != [2]int{100, 220} {
		t.Errorf("cs201 at %v, want {100 220}", pos["cs201"])
	}
	if len(vm.Edges) != 1 || vm.Edges[0].FromID != "cs101" || vm.Edges[0].ToID != "cs201" {
		t.Errorf("edges = %+v", vm.Edges)
	}
}

func TestViewModelWithoutRoadmap(t *testing.T) {
	s := newTestSession(t, &fakeChat{replies: []string{roadmapReply}}, sessionSubjects())
	vm := s.ViewModel()
	if vm.State != StateReady || len(vm.Nodes) != 0 || vm.Selected != nil {
		t.Errorf("unexpected empty view model: %+v", vm)
	}
}

func TestStartSurvivesSourceFailure(t *testing.T) {
	store := catalog.NewStore(&catalog.StaticSource{Err: errors.New("boom")})
	s, err := NewSession(Config{}, WithCatalogStore(store),
		WithChatProvider(&fakeChat{replies: []string{roadmapReply}}))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrCatalogLoad) {
		t.Fatalf("Start error = %v, want ErrCatalogLoad", err)
	}
	// The session still reaches Ready over an empty catalog.
	if s.State() != StateReady {
		t.Errorf("state = %v, want ready", s.State())
	}
	if _, err := s.Generate(context.Background(), "Nurse"); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("Generate error = %v, want ErrEmptyCatalog", err)
	}
}

// enrichChat fails for one subject id and rates the rest.
type enrichChat struct {
	failFor string
	calls   int
}

func (f *enrichChat) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.calls++
	prompt := req.Messages[0].Content
	if f.failFor != "" && strings.Contains(prompt, f.failFor) {
		return nil, errors.New("rate limited")
	}
	return &llm.ChatResponse{Content: `{
		"career_relevance": {"software_engineer": 0.8},
		"career_relevance_reason": {"software_engineer": "Directly applicable."}
	}`}, nil
}

func (f *enrichChat) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("embeddings not supported")
}

func TestEnrichCatalogIsolatesFailures(t *testing.T) {
	chat := &enrichChat{failFor: "cs201"}
	s := newTestSession(t, chat, sessionSubjects())

	report, err := s.EnrichCatalog(context.Background(), "Software Engineer")
	if err != nil {
		t.Fatalf("EnrichCatalog: %v", err)
	}
	if report.Total != 2 || report.Enriched != 1 || report.Failed != 1 {
		t.Errorf("report = %+v, want 1 enriched, 1 failed of 2", report)
	}

	enriched, ok := s.Catalog().FindByID("cs101")
	if !ok {
		t.Fatal("cs101 missing after enrichment")
	}
	if score, ok := enriched.RelevanceFor("Software Engineer"); !ok || score != 0.8 {
		t.Errorf("cs101 relevance = (%v, %v), want (0.8, true)", score, ok)
	}

	// The failed subject keeps its original, unannotated record.
	kept, ok := s.Catalog().FindByID("cs201")
	if !ok {
		t.Fatal("cs201 missing after enrichment")
	}
	if _, ok := kept.RelevanceFor("Software Engineer"); ok {
		t.Error("failed subject unexpectedly gained a relevance score")
	}
}

func TestEnrichCatalogRejections(t *testing.T) {
	store := catalog.NewStore(&catalog.StaticSource{Subjects: sessionSubjects()})
	s, err := NewSession(Config{}, WithCatalogStore(store))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if _, err := s.EnrichCatalog(context.Background(), ""); !errors.Is(err, ErrMissingCredential) {
		t.Errorf("EnrichCatalog without provider error = %v, want ErrMissingCredential", err)
	}

	s2, err := NewSession(Config{}, WithCatalogStore(catalog.NewStore(&catalog.StaticSource{})),
		WithChatProvider(&enrichChat{}))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if _, err := s2.EnrichCatalog(context.Background(), ""); !errors.Is(err, ErrCatalogNotReady) {
		t.Errorf("EnrichCatalog before load error = %v, want ErrCatalogNotReady", err)
	}
	if err := s2.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s2.EnrichCatalog(context.Background(), ""); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("EnrichCatalog on empty catalog error = %v, want ErrEmptyCatalog", err)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateLoading, "loading"},
		{StateReady, "ready"},
		{StateGenerating, "generating"},
		{StateDisplaying, "displaying"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}

func TestCatalogSourceSelection(t *testing.T) {
	tests := []struct {
		name string
		cfg  CatalogConfig
		want string
	}{
		{"xlsx path", CatalogConfig{Path: "subjects.XLSX"}, "*catalog.XLSXSource"},
		{"json path", CatalogConfig{Path: "subjects.json"}, "*catalog.FileSource"},
		{"url", CatalogConfig{URL: "https://example.com/subjects.json"}, "*catalog.HTTPSource"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := catalogSource(tt.cfg)
			if err != nil {
				t.Fatalf("catalogSource: %v", err)
			}
			if got := fmt.Sprintf("%T", src); got != tt.want {
				t.Errorf("source type = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := catalogSource(CatalogConfig{}); err == nil {
		t.Error("expected error for empty catalog config")
	}
}
