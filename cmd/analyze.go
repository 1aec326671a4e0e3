package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/logger"
	"github.com/spigell/job-scout/internal/resume"
)

type analyzeResult struct {
	Name       string   `json:"name"`
	Keywords   []string `json:"keywords"`
	Query      string   `json:"query"`
	Dimensions int      `json:"dimensions"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Extract keywords and an embedding from a resume (PDF or plain text)",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		analyze(args[0])
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func analyze(path string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	upload, err := resume.FromFile(path)
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err))
	}

	_, embedder, err := newGemini(ctx, config.AI.Gemini, logger)
	if err != nil {
		logger.Fatal("building gemini client", zap.Error(err))
	}

	keywords, release, err := newKeywordStore(ctx, config.Store)
	if err != nil {
		logger.Fatal("opening keyword store", zap.Error(err))
	}
	defer release()

	loader := loadEmbedder(ctx, embedder, logger)

	pipeline := resume.NewPipeline(loader, keywords, logger.Named("resume"))
	pipeline.MaxSize = config.Resume.MaxSize

	// Reject bad uploads before waiting for the model.
	if err := pipeline.Validate(upload); err != nil {
		logger.Fatal("invalid resume", zap.Error(err))
	}

	if _, err := loader.Wait(ctx); err != nil {
		logger.Fatal("loading embedding model", zap.Error(err))
	}

	profile, err := pipeline.Analyze(ctx, upload)
	if err != nil {
		logger.Fatal("analyzing resume", zap.Error(err))
	}

	pretty, _ := json.MarshalIndent(analyzeResult{
		Name:       upload.Name,
		Keywords:   profile.Keywords,
		Query:      profile.Query(),
		Dimensions: len(profile.Embedding),
	}, "", "  ")
	fmt.Println(string(pretty))
}
