// Package main provides the siteforge CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"siteforge/internal/archive"
	"siteforge/internal/cli"
	"siteforge/internal/config"
	"siteforge/internal/data"
	"siteforge/internal/log"
	"siteforge/internal/merge"
	"siteforge/internal/server"
	"siteforge/internal/storage"
)

// Version is the current siteforge version.
var Version = "0.3.1"

var (
	configPath   string
	exportOut    string
	exportMerged bool
)

var rootCmd = &cobra.Command{
	Use:     "siteforge",
	Short:   "Siteforge - build small web projects and export them as archives",
	Long:    `Siteforge manages virtual file trees for small HTML/PHP web projects and exports them as zip archives or single merged HTML documents.`,
	Version: Version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the interactive project shell",
	RunE:  runShell,
}

var exportCmd = &cobra.Command{
	Use:   "export <project-id>",
	Short: "Export a project archive to disk",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./data/config.yaml", "path to the config file")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path for the archive")
	exportCmd.Flags().BoolVarP(&exportMerged, "merged", "m", false, "merge into a single index.html")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	// A .env file is optional; absence is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	store    *storage.SQLiteStore
	pm       *data.ProjectManager
	fm       *data.FileManager
	exporter *archive.Exporter
}

func setup() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := log.New(cfg.LogLevel, cfg.LogPretty)

	store, err := storage.NewSQLiteStore(cfg.DatabaseDir, cfg.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open project store: %w", err)
	}

	pm, err := data.NewProjectManager(store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize project manager: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      logger,
		store:    store,
		pm:       pm,
		fm:       data.NewFileManager(),
		exporter: archive.NewExporter(),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.log.Error().Err(err).Msg("failed to close store")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	srv := server.NewServer(a.pm, a.fm, a.exporter, a.log)
	return srv.Start(a.cfg.Listen)
}

func runShell(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	rl, err := readline.New("siteforge> ")
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}

	shell := cli.NewCLI(a.pm, a.fm, a.exporter, a.cfg.ExportDir, rl, a.log)
	for {
		err := shell.Run()
		if errors.Is(err, io.EOF) || err == readline.ErrInterrupt {
			break
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}

	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	project, err := a.pm.ProjectGet(args[0])
	if err != nil {
		return err
	}

	var blob []byte
	if exportMerged {
		blob, err = merge.Export(a.exporter, project)
	} else {
		blob, err = a.exporter.Export(project)
	}
	if err != nil {
		return err
	}

	outPath := exportOut
	if outPath == "" {
		outPath = filepath.Join(a.cfg.ExportDir, archive.SanitizeName(project.Name)+".zip")
	}
	if err := os.WriteFile(outPath, blob, 0644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}

	a.log.Info().Str("path", outPath).Int("bytes", len(blob)).Msg("exported")
	return nil
}
