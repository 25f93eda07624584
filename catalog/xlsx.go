package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXSource loads the catalog from a spreadsheet export. The first sheet
// must carry a header row; recognised columns (case-insensitive) are id,
// code, name, credits, year, semester, department, description, keywords,
// prerequisites, syllabus, learning_outcomes. List-valued columns are
// semicolon-separated. Unknown columns are ignored.
type XLSXSource struct {
	Path string
}

func (s *XLSXSource) Load(ctx context.Context) ([]Subject, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening XLSX catalog: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX catalog has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("XLSX catalog has no data rows")
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["id"]; !ok {
		return nil, fmt.Errorf("XLSX catalog missing id column")
	}

	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	intCell := func(row []string, name string) int {
		v, _ := strconv.Atoi(cell(row, name))
		return v
	}
	listCell := func(row []string, name string) []string {
		raw := cell(row, name)
		if raw == "" {
			return nil
		}
		parts := strings.Split(raw, ";")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}

	subjects := make([]Subject, 0, len(rows)-1)
	for _, row := range rows[1:] {
		id := cell(row, "id")
		if id == "" {
			continue
		}
		subjects = append(subjects, Subject{
			ID:               id,
			Code:             cell(row, "code"),
			Name:             cell(row, "name"),
			Credits:          intCell(row, "credits"),
			Year:             intCell(row, "year"),
			Semester:         intCell(row, "semester"),
			Department:       cell(row, "department"),
			Description:      cell(row, "description"),
			Syllabus:         listCell(row, "syllabus"),
			Prerequisites:    listCell(row, "prerequisites"),
			Keywords:         listCell(row, "keywords"),
			LearningOutcomes: listCell(row, "learning_outcomes"),
		})
	}

	if len(subjects) == 0 {
		return nil, fmt.Errorf("XLSX catalog has no subject rows")
	}
	return subjects, nil
}
