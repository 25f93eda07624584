package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/brunobiangulo/pathway"
)

var generateCmd = &cobra.Command{
	Use:   "generate <occupation>",
	Short: "Generate a study roadmap for a target occupation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		occupation := strings.Join(args, " ")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session, err := pathway.NewSession(cfg)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := session.Start(ctx); err != nil {
			pterm.Warning.Printf("Catalog load failed, continuing empty: %v\n", err)
		}
		if !session.GenerateEnabled() {
			return fmt.Errorf("no API credential for provider %q; set it in config or environment", cfg.Chat.Provider)
		}

		spinner, _ := pterm.DefaultSpinner.Start("Asking the model for a roadmap...")
		_, err = session.Generate(ctx, occupation)
		if err != nil {
			spinner.Fail("Generation failed")
			return err
		}
		spinner.Success("Roadmap ready")

		vm := session.ViewModel()
		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(vm)
		}
		renderRoadmap(vm)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
}
