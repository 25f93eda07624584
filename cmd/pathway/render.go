package main

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"

	"github.com/brunobiangulo/pathway"
	"github.com/brunobiangulo/pathway/roadmap"
)

// renderRoadmap draws the roadmap as a semester grid: one row per layout row,
// nodes ordered left to right within it, colored by node type.
func renderRoadmap(vm *pathway.ViewModel) {
	pterm.DefaultHeader.Printfln("%s — %s", vm.Title, vm.Occupation)
	if vm.Description != "" {
		pterm.Println(pterm.Gray(vm.Description))
	}
	pterm.Println()

	rows := map[int][]pathway.NodeView{}
	var ys []int
	for _, n := range vm.Nodes {
		if _, seen := rows[n.Y]; !seen {
			ys = append(ys, n.Y)
		}
		rows[n.Y] = append(rows[n.Y], n)
	}
	sort.Ints(ys)

	for _, y := range ys {
		row := rows[y]
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })

		first := row[0]
		pterm.Printf("%s  ", pterm.LightCyan(fmt.Sprintf("Y%d S%d", first.Year, first.Semester)))
		for _, n := range row {
			mark := " "
			if n.Completed {
				mark = "✓"
			}
			pterm.Printf("[%s %s (%dcr)]  ", mark, typeStyle(n.Type).Sprint(n.Name), n.Credits)
		}
		pterm.Println()
	}

	if len(vm.Edges) > 0 {
		pterm.Println()
		pterm.Println(pterm.Gray("Prerequisite flow:"))
		for _, e := range vm.Edges {
			pterm.Printf("  %s → %s\n", e.FromID, e.ToID)
		}
	}

	pterm.Println()
	renderLegend()
	renderProgress(vm.Progress)

	if vm.Selected != nil && vm.Selected.Subject != nil {
		s := vm.Selected.Subject
		pterm.Println()
		pterm.DefaultSection.Println(s.Name)
		pterm.Println(s.Description)
	}
}

// typeStyle maps a node type to its display color. The switch is exhaustive
// over the closed enum; anything unexpected renders as elective.
func typeStyle(t roadmap.NodeType) *pterm.Style {
	switch t {
	case roadmap.TypeFoundation:
		return pterm.NewStyle(pterm.FgLightBlue)
	case roadmap.TypeCore:
		return pterm.NewStyle(pterm.FgLightGreen)
	case roadmap.TypeSpecialized:
		return pterm.NewStyle(pterm.FgLightMagenta)
	case roadmap.TypeElective:
		return pterm.NewStyle(pterm.FgLightYellow)
	default:
		return pterm.NewStyle(pterm.FgLightYellow)
	}
}

func renderLegend() {
	pterm.Printf("%s  %s  %s  %s\n",
		typeStyle(roadmap.TypeFoundation).Sprint("■ foundation"),
		typeStyle(roadmap.TypeCore).Sprint("■ core"),
		typeStyle(roadmap.TypeSpecialized).Sprint("■ specialized"),
		typeStyle(roadmap.TypeElective).Sprint("■ elective"))
}

func renderProgress(p pathway.Progress) {
	pterm.Printf("Progress: %d/%d subjects, %d/%d credits\n",
		p.CompletedNodes, p.TotalNodes, p.CompletedCredits, p.TotalCredits)
}
