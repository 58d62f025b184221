package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/observability"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the rendered height of a resume record",
	Long: `Prints the itemized height estimate of a record for a template and the page it would be exported on.

The record is validated with the same rules as an export.`,
	RunE: runEstimate,
}

var (
	estimateRecordFile string
	estimateMeasured   float64
	estimateJSON       bool
	estimateFlags      renderFlags
)

func init() {
	estimateCmd.Flags().StringVarP(&estimateRecordFile, "record", "r", "", "Path to resume record JSON file (required)")
	estimateCmd.Flags().Float64Var(&estimateMeasured, "measured", 0, "Measured content height in points for templates sized from the preview")
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "Print the estimate as JSON")
	estimateFlags.register(estimateCmd)

	if err := estimateCmd.MarkFlagRequired("record"); err != nil {
		panic(fmt.Sprintf("failed to mark record flag as required: %v", err))
	}

	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, _ []string) error {
	cfg, err := estimateFlags.resolve(cmd, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return estimateRecord(cmd.OutOrStdout(), cfg, estimateRecordFile, estimateMeasured, estimateJSON)
}

type estimateOutput struct {
	Estimate layout.Estimate `json:"estimate"`
	Page     layout.PageSize `json:"page"`
}

func estimateRecord(out io.Writer, cfg config.Config, path string, measured float64, asJSON bool) error {
	if measured < 0 {
		return fmt.Errorf("--measured must be non-negative")
	}

	rec, err := loadRecord(out, path)
	if err != nil {
		return err
	}

	profiles, err := cfg.Profiles()
	if err != nil {
		return err
	}
	profile := profiles.Resolve(cfg.Template)
	est := layout.Breakdown(rec, profile)
	page := layout.ResolvePage(rec, profile, measured)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(estimateOutput{Estimate: est, Page: page})
	}

	printer := observability.NewPrinter(out)
	if cfg.Verbose {
		printer.PrintRecord(rec)
	}
	printer.PrintEstimate(est, page)
	return nil
}
