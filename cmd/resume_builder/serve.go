package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for estimating, previewing and exporting resumes.

Draft storage is enabled when a database URL is given with --db-url or DATABASE_URL; it then also needs JWT_SECRET.`,
	RunE: runServe,
}

var (
	servePort        int
	serveDatabaseURL string
	serveFlags       renderFlags
)

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	serveFlags.register(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := serveFlags.resolve(cmd, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		if servePort < 0 || servePort > 65535 {
			return fmt.Errorf("--port must be between 0 and 65535, got %d", servePort)
		}
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = serveDatabaseURL
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	profiles, err := cfg.Profiles()
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Port:          cfg.Port,
		DatabaseURL:   cfg.DatabaseURL,
		Engine:        cfg.Engine,
		EngineOptions: cfg.EngineOptions(),
		Profiles:      profiles,
		Verbose:       cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
