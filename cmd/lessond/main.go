package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Conceptual-Machines/lesson-agents-go/agents/coordination"
	"github.com/Conceptual-Machines/lesson-agents-go/agents/lesson"
	"github.com/Conceptual-Machines/lesson-agents-go/config"
	"github.com/Conceptual-Machines/lesson-agents-go/llm"
	"github.com/Conceptual-Machines/lesson-agents-go/metrics"
	"github.com/Conceptual-Machines/lesson-agents-go/reference"
	"github.com/Conceptual-Machines/lesson-agents-go/server"
	"github.com/Conceptual-Machines/lesson-agents-go/store"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "lessond",
		Short: "Guitar lesson authoring service",
		Long: `lessond runs the lesson agent: a chat loop that turns requests into chord diagrams,
fretboard diagrams, text and video blocks on a persistent lesson document.`,
		SilenceUsage: true,
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the lesson HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	chatCmd = &cobra.Command{
		Use:   "chat <lessonId> <message>",
		Short: "Run one chat turn against a lesson and print the events",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runChat,
	}
	voicingsCmd = &cobra.Command{
		Use:   "voicings <symbol> | <root> <quality>",
		Short: "Print the reference voicings for a chord",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runVoicings,
	}

	databasePath string
	listenAddr   string
	modelName    string
	providerName string
	promptFile   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "", "SQLite database path (overrides LESSON_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "model name (overrides LESSON_MODEL)")
	rootCmd.PersistentFlags().StringVar(&providerName, "provider", "", "anthropic, openai or gemini (overrides LESSON_PROVIDER)")
	rootCmd.PersistentFlags().StringVar(&promptFile, "system-prompt", "", "file whose contents replace the built-in system prompt (overrides LESSON_SYSTEM_PROMPT_FILE)")
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (overrides LESSON_LISTEN_ADDR)")

	rootCmd.AddCommand(serveCmd, chatCmd, voicingsCmd)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Could not load .env file: %v", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the wired services shared by serve and chat
type app struct {
	cfg      *config.Config
	store    *store.SQLiteStore
	registry *prometheus.Registry
	manager  *coordination.SessionManager
	flush    func()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if databasePath != "" {
		cfg.DatabasePath = databasePath
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if modelName != "" {
		cfg.Model = modelName
	}
	if providerName != "" {
		cfg.Provider = providerName
	}
	if promptFile != "" {
		cfg.SystemPromptFile = promptFile
	}
	return cfg, nil
}

// agentOptions collects the lesson agent options derived from cfg
func agentOptions(cfg *config.Config, prom *metrics.PrometheusMetrics) ([]lesson.AgentOption, error) {
	opts := []lesson.AgentOption{lesson.WithPrometheus(prom)}
	if cfg.SystemPromptFile == "" {
		return opts, nil
	}

	raw, err := os.ReadFile(cfg.SystemPromptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read system prompt: %w", err)
	}
	systemPrompt := strings.TrimSpace(string(raw))
	if systemPrompt == "" {
		return nil, fmt.Errorf("system prompt file %s is empty", cfg.SystemPromptFile)
	}
	log.Printf("📝 Using system prompt from %s", cfg.SystemPromptFile)
	return append(opts, lesson.WithSystemPrompt(systemPrompt)), nil
}

func initSentry(cfg *config.Config) (func(), error) {
	if cfg.SentryDSN == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	log.Printf("📊 Sentry enabled")
	return func() { sentry.Flush(2 * time.Second) }, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	flush, err := initSentry(cfg)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProviderFactory(cfg.AnthropicAPIKey, cfg.OpenAIAPIKey, cfg.GeminiAPIKey).
		GetProvider(ctx, cfg.Model, cfg.Provider)
	if err != nil {
		flush()
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	st := store.NewSQLiteStore(cfg.DatabasePath)
	if err := st.Init(ctx); err != nil {
		flush()
		return nil, fmt.Errorf("failed to open lesson store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := metrics.NewPrometheusMetrics(registry)

	opts, err := agentOptions(cfg, prom)
	if err != nil {
		_ = st.Close()
		flush()
		return nil, err
	}
	agent := lesson.NewLessonAgent(cfg, provider, opts...)
	manager, err := coordination.NewSessionManager(st, agent, cfg.SessionCacheSize, coordination.WithPrometheus(prom))
	if err != nil {
		_ = st.Close()
		flush()
		return nil, err
	}

	log.Printf("🎸 Lesson agent ready (provider=%s, model=%s, db=%s)", provider.Name(), cfg.Model, cfg.DatabasePath)
	return &app{cfg: cfg, store: st, registry: registry, manager: manager, flush: flush}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.Printf("⚠️  Failed to close lesson store: %v", err)
	}
	a.flush()
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.NewServer(a.manager, server.WithGatherer(a.registry))
	return srv.Run(ctx, a.cfg.ListenAddr)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	lessonID, message := args[0], strings.Join(args[1:], " ")
	result, err := a.manager.HandleMessage(ctx, lessonID, message, func(event lesson.StreamEvent) error {
		switch event.Type {
		case lesson.EventText:
			fmt.Fprint(out, event.Content)
		case lesson.EventToolStart:
			fmt.Fprintf(out, "\n🔧 %s\n", event.Name)
		case lesson.EventToolResult:
			if event.Result.Success {
				fmt.Fprintf(out, "✅ %s\n", event.Name)
			} else {
				fmt.Fprintf(out, "❌ %s: %s\n", event.Name, event.Result.Error)
			}
		case lesson.EventError:
			fmt.Fprintf(out, "\n❌ %s\n", event.Error)
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n\n📝 %d blocks added to lesson %s\n", len(result.BlocksAdded), lessonID)
	return nil
}

func runVoicings(cmd *cobra.Command, args []string) error {
	var voicings []reference.Voicing
	if len(args) == 1 {
		_, found, err := reference.LookupSymbol(args[0])
		if err != nil {
			return err
		}
		voicings = found
	} else {
		root, quality := args[0], args[1]
		voicings = reference.LookupVoicings(root, quality)
		if len(voicings) == 0 {
			return fmt.Errorf("no voicings found for %s %s (available qualities: %s)",
				root, quality, strings.Join(reference.AvailableQualities(root), ", "))
		}
	}

	out := cmd.OutOrStdout()
	for i, v := range voicings {
		fmt.Fprintf(out, "%d. %s (base fret %d)\n", i, v.Name, v.BaseFret)
		for _, p := range v.Positions {
			fmt.Fprintf(out, "   string %d fret %d  %-2s %s\n", p.Position.String, p.Position.Fret, p.Interval, p.Note)
		}
		if len(v.MutedStrings) > 0 {
			fmt.Fprintf(out, "   muted: %v\n", v.MutedStrings)
		}
	}
	return nil
}
