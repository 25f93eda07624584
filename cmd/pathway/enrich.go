package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/brunobiangulo/pathway"
	"github.com/brunobiangulo/pathway/catalog"
)

var enrichOutput string

var enrichCmd = &cobra.Command{
	Use:   "enrich [occupation]",
	Short: "Annotate the catalog with AI career-relevance scores",
	Long: `Annotate every catalog subject with career-relevance scores.
With an occupation argument, only that occupation is rated; without one the
model rates every occupation it finds pertinent. The annotated catalog is
written to --output as a catalog document, ready to load next session.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		occupation := ""
		if len(args) > 0 {
			occupation = strings.TrimSpace(args[0])
		}

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

		spinner, _ := pterm.DefaultSpinner.Start(
			fmt.Sprintf("Rating %d subjects...", session.Catalog().Len()))
		report, err := session.EnrichCatalog(cmd.Context(), occupation)
		if err != nil {
			spinner.Fail("Enrichment failed")
			return err
		}
		spinner.Success(fmt.Sprintf("Rated %d of %d subjects in %s (%d failed)",
			report.Enriched, report.Total, report.Elapsed, report.Failed))

		if enrichOutput == "" {
			return nil
		}
		doc := struct {
			Subjects []catalog.Subject `json:"subjects"`
		}{Subjects: session.Catalog().All()}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(enrichOutput, data, 0o644); err != nil {
			return fmt.Errorf("writing annotated catalog: %w", err)
		}
		pterm.Info.Printf("Annotated catalog written to %s\n", enrichOutput)
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVarP(&enrichOutput, "output", "o", "", "Write the annotated catalog to this file")
	rootCmd.AddCommand(enrichCmd)
}
