package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/layout"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available templates",
	RunE:  runTemplates,
}

var templatesProfilesPath string

func init() {
	templatesCmd.Flags().StringVar(&templatesProfilesPath, "profiles", "", "JSON file with extra or overriding layout profiles")
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, _ []string) error {
	reg := layout.Builtin()
	if templatesProfilesPath != "" {
		if err := reg.LoadProfiles(templatesProfilesPath); err != nil {
			return fmt.Errorf("failed to load profiles: %w", err)
		}
	}
	return listTemplates(cmd.OutOrStdout(), reg)
}

func listTemplates(out io.Writer, reg *layout.Registry) error {
	def := reg.Default().Name
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TEMPLATE\tMODE\tWIDTH\tHEIGHT\tMINIMUM")
	for _, id := range reg.Templates() {
		p, _ := reg.Lookup(id)
		name := id
		if id == def {
			name += " (default)"
		}
		height := "auto"
		if p.Geometry.Mode == layout.HeightFixed {
			height = fmt.Sprintf("%g", p.Geometry.FixedHeight)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%g\t%s\t%g\n", name, p.Geometry.Mode, p.Geometry.Width, height, p.MinimumHeight)
	}
	return w.Flush()
}
