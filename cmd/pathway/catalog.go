package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/brunobiangulo/pathway"
	"github.com/brunobiangulo/pathway/catalog"
)

var (
	catalogYear      int
	catalogSemester  int
	catalogKeywords  []string
	catalogRelevant  string
	catalogThreshold float64
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List and filter the subject catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session, err := pathway.NewSession(cfg)
		if err != nil {
			return err
		}
		if err := session.Start(cmd.Context()); err != nil {
			return err
		}

		store := session.Catalog()
		subjects := store.All()
		switch {
		case catalogRelevant != "":
			threshold := catalogThreshold
			if threshold == 0 {
				threshold = cfg.RelevanceThreshold
			}
			subjects = store.FilterByCareerRelevance(catalogRelevant, threshold)
		case len(catalogKeywords) > 0:
			subjects = store.FilterByKeywords(catalogKeywords)
		case catalogYear > 0 && catalogSemester > 0:
			subjects = store.FilterByYearSemester(catalogYear, catalogSemester)
		case catalogYear > 0:
			subjects = store.FilterByYear(catalogYear)
		}

		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(subjects)
		}

		rows := pterm.TableData{{"ID", "Name", "Credits", "Year", "Sem", "Relevance"}}
		for _, s := range subjects {
			relevance := ""
			if catalogRelevant != "" {
				if score, ok := s.RelevanceFor(catalogRelevant); ok {
					relevance = fmt.Sprintf("%.2f", score)
				}
			}
			rows = append(rows, []string{
				s.ID, s.Name,
				fmt.Sprintf("%d", s.Credits),
				fmt.Sprintf("%d", s.Year),
				fmt.Sprintf("%d", s.Semester),
				relevance,
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}
		pterm.Info.Printf("%d subjects, %d credits total\n", len(subjects), creditSum(subjects))
		return nil
	},
}

func creditSum(subjects []catalog.Subject) int {
	sum := 0
	for _, s := range subjects {
		sum += s.Credits
	}
	return sum
}

func init() {
	catalogCmd.Flags().IntVar(&catalogYear, "year", 0, "Filter by teaching year")
	catalogCmd.Flags().IntVar(&catalogSemester, "semester", 0, "Filter by semester (with --year)")
	catalogCmd.Flags().StringSliceVar(&catalogKeywords, "keywords", nil, "Filter by keywords (comma-separated, any match)")
	catalogCmd.Flags().StringVar(&catalogRelevant, "relevant", "", "Filter by recorded career relevance for an occupation")
	catalogCmd.Flags().Float64Var(&catalogThreshold, "threshold", 0, "Minimum relevance score (with --relevant)")
	rootCmd.AddCommand(catalogCmd)
}
