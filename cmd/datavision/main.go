// Package main provides the CLI entry point for datavision.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukaji3/datavision-go/internal/config"
	"github.com/ukaji3/datavision-go/internal/logging"
	"github.com/ukaji3/datavision-go/internal/server"
	"github.com/ukaji3/datavision-go/pkg/datavision"
	"github.com/ukaji3/datavision-go/pkg/datavision/analysis"
	"github.com/ukaji3/datavision-go/pkg/datavision/llm"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
	"github.com/ukaji3/datavision-go/pkg/datavision/output"
	"github.com/ukaji3/datavision-go/pkg/datavision/session"
)

var (
	outputPath  string
	pretty      bool
	model       string
	temperature float32
	language    string
	fake        bool
	logFile     string
	debug       bool
	level       int
	addr        string
)

// app is the state shared by subcommands after flag parsing.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error
}

var current app

func main() {
	rootCmd := &cobra.Command{
		Use:   "datavision",
		Short: "Turn spreadsheets into tiered digital transformation proposals",
		Long: `datavision previews an Excel file, asks a Gemini model for four tiers
(20%, 50%, 70%, 100%) of solution options and chats about the chosen one.`,
		SilenceUsage:       true,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&model, "model", "", "Gemini model (default from DATAVISION_MODEL or "+llm.DefaultModel+")")
	flags.Float32Var(&temperature, "temperature", datavision.DefaultTemperature, "Sampling temperature of the analysis request")
	flags.StringVar(&language, "language", "", "Answer language (default from DATAVISION_LANGUAGE or "+datavision.DefaultLanguage+")")
	flags.BoolVar(&fake, "fake", false, "Use a deterministic offline model")
	flags.StringVar(&logFile, "log-file", "", "Write JSON logs to a rotating file")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")

	previewCmd := &cobra.Command{
		Use:   "preview [input.xlsx]",
		Short: "Print the spreadsheet preview as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runPreview,
	}
	analyzeCmd := &cobra.Command{
		Use:   "analyze [input.xlsx]",
		Short: "Print the preview and the four-tier analysis as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	for _, cmd := range []*cobra.Command{previewCmd, analyzeCmd} {
		cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
		cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	}

	chatCmd := &cobra.Command{
		Use:   "chat [input.xlsx]",
		Short: "Analyze a file, then chat about a selected option",
		Args:  cobra.ExactArgs(1),
		RunE:  runChat,
	}
	chatCmd.Flags().IntVar(&level, "level", 0, "Option tier to select before chatting (20, 50, 70 or 100)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and WebSocket API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from DATAVISION_ADDR or "+config.DefaultAddr+")")

	rootCmd.AddCommand(previewCmd, analyzeCmd, chatCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = model
	}
	if flags.Changed("temperature") {
		cfg.Temperature = temperature
	}
	if flags.Changed("language") {
		cfg.Language = language
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("addr") {
		cfg.Addr = addr
	}

	l, err := logging.New(cfg.LogFile, debug)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	slog.SetDefault(l.Logger)
	current = app{cfg: cfg, logger: l.Logger, closeLog: l.Close}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if current.closeLog != nil {
		return current.closeLog()
	}
	return nil
}

// newClient returns the configured model client wrapped with logging.
func (a app) newClient(ctx context.Context) (llm.Client, error) {
	if fake {
		return llm.WithLogging(llm.NewFakeClient(), a.logger), nil
	}
	client, err := llm.NewGeminiClient(ctx, a.cfg.APIKey, a.cfg.Model)
	if err != nil {
		return nil, err
	}
	return llm.WithLogging(client, a.logger), nil
}

func (a app) newRequester(client llm.Generator) (*analysis.Requester, error) {
	return analysis.NewRequester(client, a.cfg.Options(), a.logger)
}

func runPreview(cmd *cobra.Command, args []string) error {
	preview, err := datavision.ExtractPreviewFile(args[0])
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if err := output.WriteFile(outputPath, preview, pretty); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

type analyzeOutput struct {
	FileName string                     `json:"fileName"`
	Preview  *models.SpreadsheetPreview `json:"preview"`
	Result   *models.AnalysisResult     `json:"result"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, err := current.newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	s, err := loadSession(ctx, client, args[0])
	if err != nil {
		return err
	}
	snap := s.Snapshot()
	out := analyzeOutput{FileName: snap.FileName, Preview: snap.Preview, Result: snap.Result}
	if err := output.WriteFile(outputPath, out, pretty); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// loadSession extracts path and analyzes it in a new session.
func loadSession(ctx context.Context, client llm.Generator, path string) (*session.Session, error) {
	requester, err := current.newRequester(client)
	if err != nil {
		return nil, err
	}
	s := session.New(current.cfg.Language)
	if err := analyzeInto(ctx, s, requester, path); err != nil {
		return nil, err
	}
	return s, nil
}

func analyzeInto(ctx context.Context, s *session.Session, requester *analysis.Requester, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	if _, err := s.Extract(path, f); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if _, err := s.Analyze(ctx, requester); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := current.newClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	requester, err := current.newRequester(client)
	if err != nil {
		return err
	}
	registry, err := server.NewRegistry(current.cfg.SessionCapacity)
	if err != nil {
		return err
	}
	handler := server.NewHandler(requester, client, registry, current.cfg.Language, current.logger)
	srv := server.New(current.cfg.Addr, server.NewMux(handler), current.logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
