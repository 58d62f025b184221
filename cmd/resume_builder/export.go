package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/engine"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/observability"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a resume record to PDF",
	Long: `Validates a resume record, sizes the page to fit its content and writes a single-page PDF.

With --all every template is exported side by side as resume-<template>.pdf.
Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runExport,
}

var (
	exportRecordFile string
	exportOutputDir  string
	exportFilename   string
	exportAll        bool
	exportMeasured   float64
	exportFlags      renderFlags
)

func init() {
	exportCmd.Flags().StringVarP(&exportRecordFile, "record", "r", "", "Path to resume record JSON file (required)")
	exportCmd.Flags().StringVarP(&exportOutputDir, "out", "o", "", "Output directory for exported PDFs")
	exportCmd.Flags().StringVar(&exportFilename, "filename", "", "File name of a single export (default resume.pdf)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every template")
	exportCmd.Flags().Float64Var(&exportMeasured, "measured", 0, "Measured content height in points for templates sized from the preview")
	exportFlags.register(exportCmd)

	if err := exportCmd.MarkFlagRequired("record"); err != nil {
		panic(fmt.Sprintf("failed to mark record flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := exportFlags.resolve(cmd, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = exportOutputDir
	}

	eng, err := engine.New(cfg.Engine, cfg.EngineOptions())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, err = exportRecord(ctx, cmd.OutOrStdout(), eng, cfg, exportOptions{
		recordPath: exportRecordFile,
		filename:   exportFilename,
		all:        exportAll,
		measured:   exportMeasured,
	})
	return err
}

type exportOptions struct {
	recordPath string
	filename   string
	all        bool
	measured   float64
}

func exportRecord(ctx context.Context, out io.Writer, eng engine.Engine, cfg config.Config, opts exportOptions) ([]*export.Artifact, error) {
	if opts.measured < 0 {
		return nil, fmt.Errorf("--measured must be non-negative")
	}
	if opts.all && opts.filename != "" {
		return nil, fmt.Errorf("--filename cannot be used with --all")
	}

	rec, err := loadRecord(out, opts.recordPath)
	if err != nil {
		return nil, err
	}

	profiles, err := cfg.Profiles()
	if err != nil {
		return nil, err
	}

	exp := export.New(eng, export.FileSaver{Dir: cfg.OutputDir}, profiles)
	exp.Verbose = cfg.Verbose
	if cfg.Verbose {
		exp.OnProgress = func(ev export.ProgressEvent) {
			_, _ = fmt.Fprintf(out, "[%s] %s: %s\n", strings.ToUpper(string(ev.Step)), ev.Template, ev.Message)
		}
		observability.NewPrinter(out).PrintRecord(rec)
	}

	var arts []*export.Artifact
	if opts.all {
		arts, err = exp.ExportAll(ctx, export.BatchRequest{
			Record:         rec,
			Templates:      profiles.Templates(),
			MeasuredHeight: opts.measured,
		})
	} else {
		var art *export.Artifact
		art, err = exp.Export(ctx, export.Request{
			Record:         rec,
			TemplateID:     cfg.Template,
			MeasuredHeight: opts.measured,
			Filename:       opts.filename,
		})
		if art != nil {
			arts = []*export.Artifact{art}
		}
	}
	if err != nil {
		return nil, err
	}

	observability.NewPrinter(out).PrintArtifacts(arts)
	return arts, nil
}
