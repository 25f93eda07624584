package roadmap

import "sort"

// Grid constants. One row per (year, semester) group, one column per node
// within its group.
const (
	layoutXStart = 100
	layoutYStart = 100
	layoutXStep  = 180
	layoutYStep  = 120
)

// Edge anchor offsets from a node's top-left corner. Both endpoints use the
// same offset in the reference rendering.
const (
	anchorDX = 60
	anchorDY = 20
)

// Point is a node's top-left position on the grid.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Edge is a rendered prerequisite/progression arrow between two placed nodes.
type Edge struct {
	FromID string `json:"from"`
	ToID   string `json:"to"`
	X1     int    `json:"x1"`
	Y1     int    `json:"y1"`
	X2     int    `json:"x2"`
	Y2     int    `json:"y2"`
}

// Layout assigns a deterministic grid position to every node. It is a pure
// function of the node set: input order is irrelevant and any coordinates the
// model reply proposed are never consulted. Nodes are grouped by
// (year, semester); groups become rows ordered by year then semester, and
// within a row nodes are ordered by name ascending (the documented
// tie-break). Re-laying-out the same roadmap always yields the same mapping.
func Layout(r *Roadmap) map[string]Point {
	type groupKey struct {
		year, semester int
	}

	groups := make(map[groupKey][]Node)
	for _, n := range r.Nodes {
		k := groupKey{n.Year, n.Semester}
		groups[k] = append(groups[k], n)
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].semester < keys[j].semester
	})

	positions := make(map[string]Point, len(r.Nodes))
	for row, k := range keys {
		nodes := groups[k]
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodes[i].Name < nodes[j].Name
		})
		for col, n := range nodes {
			positions[n.ID] = Point{
				X: layoutXStart + col*layoutXStep,
				Y: layoutYStart + row*layoutYStep,
			}
		}
	}
	return positions
}

// Edges derives the renderable edge set from the nodes' connects links and a
// position mapping. Links whose target id is not among the placed nodes are
// silently skipped; a stale link is formatting noise, not an error. Edge
// order follows node order, then connects order, so the result is stable.
func Edges(r *Roadmap, positions map[string]Point) []Edge {
	var edges []Edge
	for _, n := range r.Nodes {
		from, ok := positions[n.ID]
		if !ok {
			continue
		}
		for _, target := range n.Connects {
			to, ok := positions[target]
			if !ok {
				continue
			}
			edges = append(edges, Edge{
				FromID: n.ID,
				ToID:   target,
				X1:     from.X + anchorDX,
				Y1:     from.Y + anchorDY,
				X2:     to.X + anchorDX,
				Y2:     to.Y + anchorDY,
			})
		}
	}
	return edges
}
