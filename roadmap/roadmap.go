// Package roadmap defines the AI-generated study-plan contract: the roadmap
// data model, the interpreter that recovers a roadmap from a raw model reply,
// and the deterministic grid layout used for rendering.
package roadmap

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NodeType classifies a roadmap node's role in the progression.
type NodeType int

const (
	// TypeFoundation marks entry-level subjects the rest of the plan builds on.
	TypeFoundation NodeType = iota
	// TypeCore marks mandatory subjects for the target occupation.
	TypeCore
	// TypeSpecialized marks advanced subjects specific to the occupation.
	TypeSpecialized
	// TypeElective marks optional supporting subjects.
	TypeElective
)

// nodeTypeNames maps each NodeType to its wire representation.
var nodeTypeNames = map[NodeType]string{
	TypeFoundation:  "foundation",
	TypeCore:        "core",
	TypeSpecialized: "specialized",
	TypeElective:    "elective",
}

// ParseNodeType converts a wire string to a NodeType. Unrecognized values
// fall back to TypeElective so a sloppy model reply degrades instead of
// failing interpretation.
func ParseNodeType(s string) NodeType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "foundation":
		return TypeFoundation
	case "core":
		return TypeCore
	case "specialized":
		return TypeSpecialized
	default:
		return TypeElective
	}
}

// String returns the wire representation of the node type.
func (t NodeType) String() string {
	if name, ok := nodeTypeNames[t]; ok {
		return name
	}
	return "elective"
}

// MarshalJSON encodes the node type as its wire string.
func (t NodeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes the node type from its wire string.
func (t *NodeType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("node type: %w", err)
	}
	*t = ParseNodeType(s)
	return nil
}

// Node is one subject placed on the plan. Its ID is a weak reference into
// the catalog: resolution by lookup, never assumed to succeed. Positions are
// layout output, not node state; any coordinates present in a model reply
// are dropped at decode time.
type Node struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Type           NodeType `json:"type"`
	Completed      bool     `json:"completed"`
	Connects       []string `json:"connects,omitempty"`
	Credits        int      `json:"credits"`
	Year           int      `json:"year"`
	Semester       int      `json:"semester"`
	RelevanceScore float64  `json:"relevance_score"`
}

// Roadmap is one AI-proposed study plan for a target occupation. It is
// created wholesale by the interpreter, replaced wholesale on each new
// generation, and mutated only through copy-on-write completion toggles.
type Roadmap struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Occupation  string `json:"occupation"`
	Nodes       []Node `json:"nodes"`
	// TotalCredits is the model-declared sum; it is not independently
	// verified. Compare against NodeCreditSum to detect drift.
	TotalCredits int    `json:"total_credits"`
	Reasoning    string `json:"reasoning,omitempty"`
}

// NodeByID returns the first node with the given id.
func (r *Roadmap) NodeByID(id string) (*Node, bool) {
	for i := range r.Nodes {
		if r.Nodes[i].ID == id {
			return &r.Nodes[i], true
		}
	}
	return nil, false
}

// ToggleCompleted returns a new roadmap in which the named node's completed
// flag is flipped. The node slice is copied; the receiver and every node in
// it are left untouched. Returns false when the id is unknown.
func (r *Roadmap) ToggleCompleted(id string) (*Roadmap, bool) {
	idx := -1
	for i := range r.Nodes {
		if r.Nodes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	out := *r
	out.Nodes = make([]Node, len(r.Nodes))
	copy(out.Nodes, r.Nodes)
	out.Nodes[idx].Completed = !out.Nodes[idx].Completed
	return &out, true
}

// NodeCreditSum sums the credits declared on the nodes themselves,
// independent of the roadmap-level TotalCredits field.
func (r *Roadmap) NodeCreditSum() int {
	sum := 0
	for i := range r.Nodes {
		sum += r.Nodes[i].Credits
	}
	return sum
}

// CompletedStats returns the number of completed nodes and their credit sum.
func (r *Roadmap) CompletedStats() (count, credits int) {
	for i := range r.Nodes {
		if r.Nodes[i].Completed {
			count++
			credits += r.Nodes[i].Credits
		}
	}
	return count, credits
}
