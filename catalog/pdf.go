package catalog

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ImportHandbook fills in missing subject descriptions from a course-handbook
// PDF. The handbook's plain text is scanned page by page; the text following
// a subject's code (up to the next known code or page end) becomes that
// subject's description when the catalog entry has none. Subjects are not
// mutated: the result is a fresh slice with enriched copies.
func ImportHandbook(path string, subjects []Subject) ([]Subject, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening handbook PDF: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Pages that fail extraction are skipped, not fatal.
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no text extracted from handbook PDF")
	}
	full := strings.Join(pages, "\n")

	codes := make([]string, 0, len(subjects))
	for _, s := range subjects {
		if s.Code != "" {
			codes = append(codes, s.Code)
		}
	}

	out := make([]Subject, len(subjects))
	copy(out, subjects)
	filled := 0
	for i := range out {
		if out[i].Description != "" || out[i].Code == "" {
			continue
		}
		desc := sectionAfterCode(full, out[i].Code, codes)
		if desc != "" {
			out[i].Description = desc
			filled++
		}
	}

	slog.Info("catalog: handbook import complete",
		"pages", len(pages), "descriptions_filled", filled)
	return out, nil
}

// sectionAfterCode returns the text between the first occurrence of code and
// the next occurrence of any other known code, trimmed and whitespace
// collapsed. Empty when the code does not appear.
func sectionAfterCode(text, code string, codes []string) string {
	start := strings.Index(text, code)
	if start < 0 {
		return ""
	}
	start += len(code)

	end := len(text)
	for _, other := range codes {
		if other == code {
			continue
		}
		if idx := strings.Index(text[start:], other); idx >= 0 && start+idx < end {
			end = start + idx
		}
	}

	section := strings.Join(strings.Fields(text[start:end]), " ")
	const maxDescription = 1000
	if len(section) > maxDescription {
		if cut := strings.LastIndex(section[:maxDescription], " "); cut > 0 {
			section = section[:cut]
		} else {
			section = section[:maxDescription]
		}
	}
	return strings.TrimSpace(section)
}
