package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/advisor"
	"github.com/spigell/job-scout/internal/ai"
	"github.com/spigell/job-scout/internal/apperr"
	"github.com/spigell/job-scout/internal/jobs"
	"github.com/spigell/job-scout/internal/logger"
	"github.com/spigell/job-scout/internal/resume"
	"github.com/spigell/job-scout/internal/search"
	"github.com/spigell/job-scout/internal/session"
)

const (
	PromptLoadMore        = "Load more postings"
	PromptAsk             = "Ask the assistant"
	PromptChangeQuery     = "Change search query"
	PromptUpload          = "Upload a resume"
	PromptShowJobs        = "Show postings"
	PromptShowPosting     = "Show a posting"
	PromptReportByCompany = "Report by company"
	PromptJobsToFile      = "Dump postings to file"
	PromptExit            = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{
		PromptLoadMore,
		PromptAsk,
		PromptChangeQuery,
		PromptUpload,
		PromptShowJobs,
		PromptShowPosting,
		PromptReportByCompany,
		PromptJobsToFile,
		PromptExit,
	},
	Size: 9,
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start an interactive job search session",
	Run: func(cmd *cobra.Command, _ []string) {
		resumePath, _ := cmd.Flags().GetString("resume")
		runSession(resumePath)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.Flags().StringP("resume", "r", "", "resume file (PDF or plain text) to analyze at start")
}

// runSession is the interactive command of the cli.
func runSession(resumePath string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-scout session", zap.String("version", version))

	index, err := newIndex(config, logger)
	if err != nil {
		logger.Fatal(
			"building adzuna client",
			zap.Error(err),
			zap.String("hint", "set ADZUNA_APP_ID and ADZUNA_APP_KEY_FILE environment variables or the 'adzuna' section in the configuration file"),
		)
	}

	generator, embedder, err := newGemini(ctx, config.AI.Gemini, logger)
	if err != nil {
		logger.Fatal(
			"building gemini client",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	keywords, release, err := newKeywordStore(ctx, config.Store)
	if err != nil {
		logger.Fatal("opening keyword store", zap.Error(err))
	}
	defer release()

	filter, err := newFilter(config.Search, logger.Named("filtering"))
	if err != nil {
		logger.Fatal("preparing filters", zap.Error(err))
	}

	loader := loadEmbedder(ctx, embedder, logger)

	pipeline := resume.NewPipeline(loader, keywords, logger.Named("resume"))
	pipeline.MaxSize = config.Resume.MaxSize

	sess := session.New(ctx, session.Deps{
		Index:     index,
		Generator: generator,
		Embedders: loader,
		Keywords:  keywords,
		Pipeline:  pipeline,
		Search:    searchOptions(config.Search, filter),
	}, logger)
	defer sess.Close()

	if err := sess.Start(ctx); err != nil {
		logger.Warn("starting without persisted keywords", zap.Error(err))
	}

	if resumePath != "" {
		// The upload needs the embedding model.
		if _, err := loader.Wait(ctx); err != nil {
			logger.Fatal("loading embedding model", zap.Error(err))
		}
		if err := uploadResume(ctx, sess, resumePath); err != nil {
			logger.Error("analyzing resume", zap.Error(err))
		}
	}

	queries := search.NewDebouncer(config.Search.Debounce, sess.Search().SetQuery)
	defer queries.Stop()

	sess.Search().Wait()
	printState(sess.Search().State())

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Info("exiting", zap.Error(err))
			return
		}

		if err := handleAction(ctx, action, sess, queries, loader, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Error("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, sess *session.Session, queries *search.Debouncer, loader *ai.Loader, logger *zap.Logger) error {
	controller := sess.Search()

	switch action {
	case PromptLoadMore:
		if !controller.State().HasMore {
			logger.Info("no more postings for the current query")
			return nil
		}
		controller.OnNearEndOfList()
		controller.Wait()
		printState(controller.State())
		return nil
	case PromptAsk:
		question, err := (&promptui.Prompt{Label: "Your question"}).Run()
		if err != nil {
			return err
		}
		_, err = sess.Ask(ctx, question)
		printLastMessage(sess.Chat())
		printChatStatus(os.Stdout, sess.Chat().Status(), loader.Err())
		if err != nil && !errors.Is(err, advisor.ErrBusy) {
			logger.Debug("assistant reported an error", zap.Error(err))
		}
		return nil
	case PromptChangeQuery:
		query, err := (&promptui.Prompt{Label: "Search query", Default: controller.State().Query}).Run()
		if err != nil {
			return err
		}
		queries.Trigger(query)
		queries.Flush()
		controller.Wait()
		printState(controller.State())
		return nil
	case PromptUpload:
		path, err := (&promptui.Prompt{Label: "Resume file"}).Run()
		if err != nil {
			return err
		}
		if err := uploadResume(ctx, sess, strings.TrimSpace(path)); err != nil {
			return err
		}
		controller.Wait()
		printState(controller.State())
		return nil
	case PromptShowJobs:
		printState(controller.State())
		return nil
	case PromptShowPosting:
		id, err := (&promptui.Prompt{Label: "Posting ID"}).Run()
		if err != nil {
			return err
		}
		id = strings.TrimSpace(id)
		if !printPosting(os.Stdout, &jobs.Postings{Items: controller.State().Jobs}, id) {
			fmt.Printf("No posting with ID %q in the list.\n\n", id)
		}
		return nil
	case PromptReportByCompany:
		postings := &jobs.Postings{Items: controller.State().Jobs}
		pretty, _ := json.MarshalIndent(postings.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("postings count", postings.Len()))
		return nil
	case PromptJobsToFile:
		postings := &jobs.Postings{Items: controller.State().Jobs}
		filename, err := postings.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump postings to file: %w", err)
		}
		logger.Info("dumping postings to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func uploadResume(ctx context.Context, sess *session.Session, path string) error {
	upload, err := resume.FromFile(path)
	if err != nil {
		return err
	}

	if _, err := sess.Upload(ctx, upload); err != nil {
		return err
	}

	printLastMessage(sess.Chat())
	return nil
}

func printState(state search.State) {
	fmt.Printf("\nQuery: %q, %d postings, page %d\n", state.Query, len(state.Jobs), state.CurrentPage)
	for _, posting := range state.Jobs {
		line := fmt.Sprintf("%s %s / %s / %s", posting.ID, posting.Title, posting.Company, posting.Location)
		if salary := posting.SalaryRange(); salary != "" {
			line += " / " + salary
		}
		fmt.Printf("  %s\n    %s\n", line, posting.ApplyURL)
	}

	switch {
	case state.Err != nil:
		fmt.Printf("Error: %v\n", state.Err)
	case state.Query != "" && !state.HasMore:
		fmt.Println("No more postings.")
	}
	fmt.Println()
}

func printLastMessage(chat *advisor.Chat) {
	messages := chat.Messages()
	if len(messages) == 0 {
		return
	}

	last := messages[len(messages)-1]
	if last.Role != advisor.RoleAssistant {
		return
	}
	fmt.Printf("\nAssistant: %s\n\n", last.Content)
}

// printChatStatus shows the error of the last assistant turn. modelErr is the
// state of the embedding model load and explains a missing model.
func printChatStatus(w io.Writer, status, modelErr error) {
	if status == nil {
		return
	}

	fmt.Fprintf(w, "Error: %v\n", status)
	if apperr.Is(status, apperr.ModelUnavailable) {
		switch {
		case errors.Is(modelErr, ai.ErrNotLoaded):
			fmt.Fprintln(w, "The embedding model is still loading, try again shortly.")
		case modelErr != nil:
			fmt.Fprintf(w, "The embedding model failed to load: %v\n", modelErr)
		}
	}
	fmt.Fprintln(w)
}

func printPosting(w io.Writer, postings *jobs.Postings, id string) bool {
	posting := postings.FindByID(id)
	if posting == nil {
		return false
	}

	fmt.Fprintf(w, "\n%s\n%s / %s\n", posting.Title, posting.Company, posting.Location)
	if salary := posting.SalaryRange(); salary != "" {
		fmt.Fprintf(w, "Salary: %s\n", salary)
	}
	fmt.Fprintf(w, "%s\n\n%s\n\n", posting.ApplyURL, posting.Description)
	return true
}
