package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/db"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Inspect stored drafts",
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored drafts, most recently updated first",
	RunE:  runDraftsList,
}

var (
	draftsDatabaseURL string
	draftsTemplate    string
	draftsTitle       string
	draftsLimit       int
)

func init() {
	draftsCmd.PersistentFlags().StringVar(&draftsDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	draftsListCmd.Flags().StringVarP(&draftsTemplate, "template", "t", "", "Only drafts using this template")
	draftsListCmd.Flags().StringVar(&draftsTitle, "title", "", "Only drafts whose title contains this text")
	draftsListCmd.Flags().IntVar(&draftsLimit, "limit", db.DefaultListLimit, "Maximum number of drafts to list")

	draftsCmd.AddCommand(draftsListCmd)
	rootCmd.AddCommand(draftsCmd)
}

// draftLister is the part of *db.DB the list command needs.
type draftLister interface {
	ListDrafts(ctx context.Context, filters db.DraftFilters) ([]db.DraftSummary, error)
}

func runDraftsList(cmd *cobra.Command, _ []string) error {
	if draftsDatabaseURL == "" {
		draftsDatabaseURL = os.Getenv("DATABASE_URL")
	}
	if draftsDatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL not set and --db-url not provided")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, draftsDatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	return listDrafts(ctx, cmd.OutOrStdout(), database, db.DraftFilters{
		TemplateID: draftsTemplate,
		Title:      draftsTitle,
		Limit:      draftsLimit,
	})
}

func listDrafts(ctx context.Context, out io.Writer, store draftLister, filters db.DraftFilters) error {
	drafts, err := store.ListDrafts(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list drafts: %w", err)
	}
	if len(drafts) == 0 {
		_, err := fmt.Fprintln(out, "No drafts found")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tTEMPLATE\tUPDATED")
	for _, d := range drafts {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Title, d.TemplateID, d.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}
