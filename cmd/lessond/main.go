package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edukit/lessond/internal/content"
	"github.com/edukit/lessond/internal/enrich"
	"github.com/edukit/lessond/internal/grading"
	"github.com/edukit/lessond/internal/handler"
	"github.com/edukit/lessond/internal/manifest"
	"github.com/edukit/lessond/internal/model"
	"github.com/edukit/lessond/internal/question"
	"github.com/edukit/lessond/internal/stats"
	"github.com/edukit/lessond/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lessond",
		Short: "Serve pre-generated lesson assets and validate quiz answers",
	}

	serve := serveCmd()
	root.AddCommand(serve, statsCmd(), checkCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `lessond --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the asset resolution HTTP server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "lessond.db", "SQLite lesson database path")
	f.String("assets-root", "assets", "Directory containing phase manifests and artifact files")
	f.StringSliceP("lessons", "l", nil, "Paths to lesson JSON files to import (repeatable)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [subject]",
		Short: "Print corpus statistics as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStats,
	}
	f := cmd.Flags()
	f.String("assets-root", "assets", "Directory containing phase manifests and artifact files")
	f.String("log-level", "warn", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that all phase manifests load cleanly",
		RunE:  runCheck,
	}
	f := cmd.Flags()
	f.String("assets-root", "assets", "Directory containing phase manifests and artifact files")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("LESSOND")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("lessond")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/lessond")
	v.AddConfigPath("/etc/lessond")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := importLessons(db, v.GetStringSlice("lessons")); err != nil {
		return fmt.Errorf("import lessons: %w", err)
	}

	assetsRoot := v.GetString("assets-root")
	ms := manifest.NewStore(assetsRoot)

	// Load every phase up front: a corrupt manifest is a deployment defect
	// and must fail startup, not the first request that touches it.
	for _, phase := range manifest.Phases() {
		if _, err := ms.Load(phase); err != nil {
			return fmt.Errorf("load phase %s: %w", phase.Name, err)
		}
	}

	repo, err := question.NewRepository(ms)
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}

	pipeline := enrich.New(ms, content.NewLoader(assetsRoot))
	h := handler.New(db, pipeline, repo, grading.NewEngine(repo), stats.New(ms, repo))

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"assets_root", assetsRoot,
		"questions", repo.Len(),
	)
	return http.ListenAndServe(addr, r)
}

func runStats(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	ms := manifest.NewStore(v.GetString("assets-root"))
	repo, err := question.NewRepository(ms)
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}
	agg := stats.New(ms, repo)

	var report any
	if len(args) == 1 {
		report, err = agg.SubjectStatistics(args[0])
	} else {
		report, err = agg.Statistics()
	}
	if err != nil {
		return fmt.Errorf("compute statistics: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	ms := manifest.NewStore(v.GetString("assets-root"))
	failed := 0
	for _, phase := range manifest.Phases() {
		m, err := ms.Load(phase)
		if err != nil {
			slog.Error("manifest check failed", "phase", phase.Name, "error", err)
			failed++
			continue
		}
		slog.Info("manifest OK",
			"phase", phase.Name,
			"artifacts", len(m.Artifacts),
			"questions", len(m.Questions),
		)
	}
	if failed > 0 {
		return fmt.Errorf("%d manifest(s) failed to load", failed)
	}
	return nil
}

func importLessons(db *store.Store, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		hash := sha256sum(data)
		storedHash, err := db.GetImportedFileHash(path)
		if err != nil {
			return fmt.Errorf("check import status for %s: %w", path, err)
		}
		if storedHash == hash {
			slog.Info("lessons file unchanged, skipping", "path", path)
			continue
		}

		var lessons []model.LessonImport
		if err := json.Unmarshal(data, &lessons); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		for _, li := range lessons {
			err := db.UpsertLesson(model.Lesson{
				ID:      li.ID,
				Title:   li.Title,
				Subject: li.Subject,
				Body:    li.Body,
			})
			if err != nil {
				return fmt.Errorf("upsert lesson from %s: %w", path, err)
			}
		}

		if err := db.SetImportedFileHash(path, hash); err != nil {
			return fmt.Errorf("record import for %s: %w", path, err)
		}
		slog.Info("imported lessons", "path", path, "count", len(lessons))
	}
	return nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
