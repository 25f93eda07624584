package roadmap

import (
	"reflect"
	"testing"
)

func layoutFixture() *Roadmap {
	// Deliberately shuffled input order: layout must not depend on it.
	return &Roadmap{
		Nodes: []Node{
			{ID: "y2s1-b", Name: "Operating Systems", Year: 2, Semester: 1, Connects: []string{"ghost"}},
			{ID: "y1s1-b", Name: "Calculus", Year: 1, Semester: 1},
			{ID: "y1s2-a", Name: "Data Structures", Year: 1, Semester: 2, Connects: []string{"y2s1-a", "y2s1-b"}},
			{ID: "y1s1-a", Name: "Algebra", Year: 1, Semester: 1, Connects: []string{"y1s2-a"}},
			{ID: "y2s1-a", Name: "Databases", Year: 2, Semester: 1},
		},
	}
}

func TestLayoutRowAndColumnOrder(t *testing.T) {
	r := layoutFixture()
	pos := Layout(r)

	if len(pos) != len(r.Nodes) {
		t.Fatalf("positions for %d nodes, want %d", len(pos), len(r.Nodes))
	}

	// Rows: (1,1) < (1,2) < (2,1).
	if pos["y1s1-a"].Y != 100 || pos["y1s2-a"].Y != 220 || pos["y2s1-a"].Y != 340 {
		t.Errorf("row ys = %d, %d, %d, want 100, 220, 340",
			pos["y1s1-a"].Y, pos["y1s2-a"].Y, pos["y2s1-a"].Y)
	}
	for _, id := range []string{"y1s1-a", "y1s1-b"} {
		if pos[id].Y != 100 {
			t.Errorf("node %s y = %d, want 100", id, pos[id].Y)
		}
	}

	// Columns within a row follow name order: Algebra before Calculus.
	if pos["y1s1-a"].X != 100 || pos["y1s1-b"].X != 280 {
		t.Errorf("columns = %d, %d, want 100, 280", pos["y1s1-a"].X, pos["y1s1-b"].X)
	}
	// Databases before Operating Systems.
	if pos["y2s1-a"].X != 100 || pos["y2s1-b"].X != 280 {
		t.Errorf("columns = %d, %d, want 100, 280", pos["y2s1-a"].X, pos["y2s1-b"].X)
	}
}

func TestLayoutEarlierGroupsAboveLater(t *testing.T) {
	r := layoutFixture()
	pos := Layout(r)

	groups := map[string][2]int{}
	for _, n := range r.Nodes {
		groups[n.ID] = [2]int{n.Year, n.Semester}
	}
	for _, a := range r.Nodes {
		for _, b := range r.Nodes {
			ga, gb := groups[a.ID], groups[b.ID]
			earlier := ga[0] < gb[0] || (ga[0] == gb[0] && ga[1] < gb[1])
			if earlier && pos[a.ID].Y >= pos[b.ID].Y {
				t.Errorf("node %s (y=%d) not strictly above %s (y=%d)",
					a.ID, pos[a.ID].Y, b.ID, pos[b.ID].Y)
			}
		}
	}
}

func TestLayoutIsPure(t *testing.T) {
	r := layoutFixture()
	first := Layout(r)
	second := Layout(r)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated layout differs:\nfirst  %v\nsecond %v", first, second)
	}

	// Input order must not matter either.
	reversed := &Roadmap{Nodes: make([]Node, len(r.Nodes))}
	for i, n := range r.Nodes {
		reversed.Nodes[len(r.Nodes)-1-i] = n
	}
	if got := Layout(reversed); !reflect.DeepEqual(first, got) {
		t.Errorf("layout depends on input order:\noriginal %v\nreversed %v", first, got)
	}
}

func TestLayoutIgnoresInputCoordinates(t *testing.T) {
	// Coordinates in the model reply are dropped at decode time, so two
	// replies differing only in x/y lay out identically.
	withCoords := `{"nodes": [{"id": "a", "name": "A", "year": 1, "semester": 1, "x": 999, "y": 999}]}`
	withoutCoords := `{"nodes": [{"id": "a", "name": "A", "year": 1, "semester": 1}]}`

	r1, err := Interpret(withCoords)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	r2, err := Interpret(withoutCoords)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}

	if !reflect.DeepEqual(Layout(r1), Layout(r2)) {
		t.Error("layout consulted coordinates from the reply")
	}
	if p := Layout(r1)["a"]; p.X != 100 || p.Y != 100 {
		t.Errorf("position = %+v, want {100 100}", p)
	}
}

func TestEdges(t *testing.T) {
	r := layoutFixture()
	pos := Layout(r)
	edges := Edges(r, pos)

	// y2s1-b connects only to "ghost", which is not placed: skipped silently.
	// y1s2-a has two live targets, y1s1-a one.
	if len(edges) != 3 {
		t.Fatalf("edge count = %d, want 3", len(edges))
	}
	for _, e := range edges {
		if e.ToID == "ghost" {
			t.Errorf("edge to unknown target %q was not skipped", e.ToID)
		}
		from, to := pos[e.FromID], pos[e.ToID]
		if e.X1 != from.X+60 || e.Y1 != from.Y+20 || e.X2 != to.X+60 || e.Y2 != to.Y+20 {
			t.Errorf("edge %s->%s anchors = (%d,%d)-(%d,%d), want offsets +60,+20",
				e.FromID, e.ToID, e.X1, e.Y1, e.X2, e.Y2)
		}
	}
}

func TestEdgesEmptyConnects(t *testing.T) {
	r := &Roadmap{Nodes: []Node{{ID: "solo", Name: "Solo", Year: 1, Semester: 1}}}
	if edges := Edges(r, Layout(r)); len(edges) != 0 {
		t.Errorf("edge count = %d, want 0", len(edges))
	}
}
