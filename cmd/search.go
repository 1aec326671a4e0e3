package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/jobs"
	"github.com/spigell/job-scout/internal/logger"
	"github.com/spigell/job-scout/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fetch job postings for a query and print them as JSON",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pages, _ := cmd.Flags().GetInt("pages")
		searchJobs(strings.Join(args, " "), pages)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntP("pages", "p", 1, "number of pages to fetch")
}

func searchJobs(query string, pages int) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	index, err := newIndex(config, logger)
	if err != nil {
		logger.Fatal(
			"building adzuna client",
			zap.Error(err),
			zap.String("hint", "set ADZUNA_APP_ID and ADZUNA_APP_KEY_FILE environment variables or the 'adzuna' section in the configuration file"),
		)
	}

	filter, err := newFilter(config.Search, logger.Named("filtering"))
	if err != nil {
		logger.Fatal("preparing filters", zap.Error(err))
	}

	controller := search.New(ctx, index, searchOptions(config.Search, filter), logger.Named("search"))
	defer controller.Close()

	controller.SetQuery(query)
	controller.Wait()

	for page := 1; page < pages; page++ {
		if !controller.State().HasMore {
			break
		}
		controller.LoadMore()
		controller.Wait()
	}

	state := controller.State()
	if state.Err != nil {
		logger.Error("search stopped early", zap.Error(state.Err), zap.Int("page", state.CurrentPage))
	}

	logger.Info("search finished",
		zap.String("query", state.Query),
		zap.Int("count", len(state.Jobs)),
		zap.Bool("has_more", state.HasMore),
	)

	pretty, _ := json.MarshalIndent(&jobs.Postings{Items: state.Jobs}, "", "  ")
	fmt.Println(string(pretty))
}
