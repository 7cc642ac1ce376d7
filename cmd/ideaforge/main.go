package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"ideaforge/internal/config"
	"ideaforge/internal/history"
	"ideaforge/internal/oracle"
	"ideaforge/internal/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Run flags, applied on top of config.Load
	flagBaseURL  string
	flagModel    string
	flagHistory  string
	flagRounds   int
	flagMaxDepth int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ideaforge [output-file]",
	Short: "ideaforge - stimulus-word idea generation with self-evaluation and pruning",
	Long: `ideaforge runs a best-of-N idea generation loop against an
OpenAI-compatible model endpoint.

Each round works in four stages: draw stimulus words, map them onto
candidate ideas, finalize the strongest candidate, then self-evaluate it.
The best artifact across rounds is written to the output file, recorded
in the history store, and weighed against its predecessor by a judge
call that prunes the loser.

Runs are skipped once the newest history record reaches the chain depth
ceiling, so an unattended scheduler cannot iterate forever.`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runPipeline,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the recorded ideas",
	Long: `Prints the history store in chronological order: branch, chain depth,
judge verdict when present, and the first line of each recorded idea.
Read-only; never triggers an oracle call.`,
	RunE: showHistory,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagHistory, "history", "", "History file path (default: results/ideas.json)")

	rootCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "Oracle base URL")
	rootCmd.Flags().StringVar(&flagModel, "model", "", "Oracle model name")
	rootCmd.Flags().IntVar(&flagRounds, "rounds", 0, "Maximum generation rounds per run")
	rootCmd.Flags().IntVar(&flagMaxDepth, "max-depth", 0, "Chain depth ceiling before runs are skipped")

	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig layers command-line flags on top of file and environment
// configuration. Flags win.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagHistory != "" {
		cfg.HistoryPath = flagHistory
	}
	if flagRounds > 0 {
		cfg.MaxRounds = flagRounds
	}
	if flagMaxDepth > 0 {
		cfg.MaxChainDepth = flagMaxDepth
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runPipeline(cmd *cobra.Command, args []string) error {
	outputPath := "idea.txt"
	if len(args) == 1 {
		outputPath = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := oracle.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	report, err := pipeline.New(cfg, client, logger).Run(ctx)
	if err != nil {
		return err
	}
	if report.Skipped {
		fmt.Println("Chain depth ceiling reached; run skipped. Clear or trim the history to continue.")
		return nil
	}

	if err := writeArtifacts(outputPath, report.Artifact); err != nil {
		return err
	}

	fmt.Printf("Branch: %s\n", report.Branch)
	fmt.Printf("Score:  %.0f/40 (pass=%v)\n", report.Eval.Scores.Total(), report.Eval.Pass)
	fmt.Printf("Idea written to %s\n\n", outputPath)
	fmt.Println(report.Artifact)
	return nil
}

// writeArtifacts writes the winning idea and the handoff prompt next to it.
func writeArtifacts(outputPath, artifact string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, []byte(artifact+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write idea: %w", err)
	}
	promptPath := outputPath + ".prompt.md"
	if err := os.WriteFile(promptPath, []byte(pipeline.HandoffPrompt(artifact)), 0o644); err != nil {
		return fmt.Errorf("failed to write handoff prompt: %w", err)
	}
	return nil
}

func showHistory(cmd *cobra.Command, args []string) error {
	// Listing is read-only, so skip validation and never require an API key.
	cfg, err := config.LoadUnchecked(configPath)
	if err != nil {
		return err
	}
	if flagHistory != "" {
		cfg.HistoryPath = flagHistory
	}

	store := history.Load(cfg.HistoryPath, logger)
	if store.Len() == 0 {
		fmt.Println("No recorded ideas.")
		return nil
	}

	for i, rec := range store.Records() {
		fmt.Printf("%d. %s (depth %d, %s)\n", i+1, rec.Branch, rec.ChainDepth, rec.Timestamp)
		if rec.Judge != nil {
			fmt.Printf("   judge: winner=%s prev=%.0f last=%.0f\n",
				rec.Judge.Winner, rec.Judge.Scores.Prev.Total(), rec.Judge.Scores.Last.Total())
		}
		fmt.Printf("   %s\n", firstLine(rec.FinalOutput))
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
