package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/engine"
	"github.com/jonathan/resume-builder/internal/export"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Write the HTML preview of a resume record",
	Long:  "Validates a record and renders it to standalone HTML on the page it would be exported on.",
	RunE:  runPreview,
}

var (
	previewRecordFile string
	previewOutputFile string
	previewMeasured   float64
	previewFlags      renderFlags
)

func init() {
	previewCmd.Flags().StringVarP(&previewRecordFile, "record", "r", "", "Path to resume record JSON file (required)")
	previewCmd.Flags().StringVarP(&previewOutputFile, "out", "o", "", "Path to output HTML file (default stdout)")
	previewCmd.Flags().Float64Var(&previewMeasured, "measured", 0, "Measured content height in points for templates sized from the preview")
	previewFlags.register(previewCmd)

	if err := previewCmd.MarkFlagRequired("record"); err != nil {
		panic(fmt.Sprintf("failed to mark record flag as required: %v", err))
	}

	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, _ []string) error {
	cfg, err := previewFlags.resolve(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if previewOutputFile != "" {
		f, err := os.Create(previewOutputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return previewRecord(out, cmd.ErrOrStderr(), cfg, previewRecordFile, previewMeasured)
}

func previewRecord(out, errOut io.Writer, cfg config.Config, path string, measured float64) error {
	rec, err := loadRecord(errOut, path)
	if err != nil {
		return err
	}

	profiles, err := cfg.Profiles()
	if err != nil {
		return err
	}

	// The engine is never called for a preview.
	p, err := export.New(engine.NewNativeEngine(cfg.EngineOptions()), nil, profiles).Preview(export.Request{
		Record:         rec,
		TemplateID:     cfg.Template,
		MeasuredHeight: measured,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, p.HTML)
	return err
}
