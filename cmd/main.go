package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joydeepsharma2006-hash/quiz-app/internal/config"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/questionbank"
	"github.com/joydeepsharma2006-hash/quiz-app/internal/view"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

var (
	configPath string

	questionsCount      int
	questionsCategory   int
	questionsDifficulty string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "quiz-app",
		Short:        "Server-rendered trivia quiz",
		SilenceUsage: true,
		RunE:         runServeCmd,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "quiz.toml", "path to TOML config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the quiz web server (default)",
		RunE:  runServeCmd,
	})
	rootCmd.AddCommand(newQuestionsCmd())

	return rootCmd
}

func newQuestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Fetch a question batch and print it as JSON",
		RunE:  runQuestionsCmd,
	}
	cmd.Flags().IntVarP(&questionsCount, "count", "n", 0, "number of questions (default from config)")
	cmd.Flags().IntVar(&questionsCategory, "category", 0, "category id, 0 for any")
	cmd.Flags().StringVar(&questionsDifficulty, "difficulty", "", "easy, medium or hard")
	return cmd
}

func runQuestionsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	count := questionsCount
	if count <= 0 {
		count = cfg.DefaultQuestions
	}
	client := questionbank.NewClient(cfg.QuestionBankURL, cfg.QuestionBankTimeout)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.QuestionBankTimeout+time.Second)
	defer cancel()
	questions, err := client.FetchQuestions(ctx, questionbank.Request{
		Amount:     count,
		Category:   questionsCategory,
		Difficulty: questionsDifficulty,
	})
	if err != nil {
		return err
	}

	type printed struct {
		Question string   `json:"question"`
		Answer   string   `json:"answer"`
		Options  []string `json:"options"`
	}
	out := make([]printed, len(questions))
	for i, q := range questions {
		opts := q.Options()
		for j := range opts {
			opts[j] = view.Decode(opts[j])
		}
		out[i] = printed{Question: view.Decode(q.Text), Answer: view.Decode(q.CorrectAnswer), Options: opts}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}
	return log
}
