package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-scout/internal/filtering"
	"github.com/spigell/job-scout/internal/search"
)

const (
	app = "job-scout"
)

type Config struct {
	Adzuna    *AdzunaConfig `mapstructure:"adzuna"`
	AI        *AIConfig     `mapstructure:"ai"`
	Search    *SearchConfig `mapstructure:"search"`
	Resume    *ResumeConfig `mapstructure:"resume"`
	Store     *StoreConfig  `mapstructure:"store"`
	UserAgent string        `mapstructure:"user-agent"`
}

type AdzunaConfig struct {
	AppID      string `mapstructure:"app-id"`
	AppKey     string `mapstructure:"app-key"`
	AppKeyFile string `mapstructure:"app-key-file"`
	Country    string `mapstructure:"country"`
	APIURL     string `mapstructure:"api-url"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey         string        `mapstructure:"api-key"`
	APIKeyFile     string        `mapstructure:"api-key-file"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding-model"`
	MaxRetries     int           `mapstructure:"max-retries"`
	MaxLogLength   int           `mapstructure:"max-log-length"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type SearchConfig struct {
	Location         string        `mapstructure:"location"`
	Debounce         time.Duration `mapstructure:"debounce"`
	DisabledFilters  []string      `mapstructure:"disable-filters"`
	filtering.Config `mapstructure:",squash"`
}

type ResumeConfig struct {
	MaxSize int64 `mapstructure:"max-size"`
}

type StoreConfig struct {
	Kind     string `mapstructure:"kind"`
	Path     string `mapstructure:"path"`
	RedisURL string `mapstructure:"redis-url"`
	Prefix   string `mapstructure:"prefix"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-scout searches job postings matching your resume and answers job search questions",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"adzuna.app-id":          "ADZUNA_APP_ID",
		"adzuna.app-key-file":    "ADZUNA_APP_KEY_FILE",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"store.redis-url":        "JOB_SCOUT_REDIS_URL",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("search.location", "remote")
	viper.SetDefault("search.debounce", "300ms")
	viper.SetDefault("resume.max-size", 1<<20)
	viper.SetDefault("store.kind", "file")
	viper.SetDefault("store.path", app+".keywords.json")
	viper.SetDefault("store.prefix", app+":")
	viper.SetDefault("ai.gemini.max-retries", 3)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-scout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringSlice("disable-filter", nil, "filters to skip (excluded_companies, minimum_salary, exclude_file)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("search.disable-filters", rootCmd.PersistentFlags().Lookup("disable-filter"))
}

func initConfig() {
	// Version does not need any configuration.
	if versionCmd.CalledAs() != "" {
		return
	}

	// A missing .env is fine, the variables may come from the environment.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Adzuna == nil {
		config.Adzuna = &AdzunaConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Search == nil {
		config.Search = &SearchConfig{}
	}
	if config.Resume == nil {
		config.Resume = &ResumeConfig{}
	}
	if config.Store == nil {
		config.Store = &StoreConfig{}
	}

	// Zero falls back to the default window.
	if d := config.Search.Debounce; d != 0 && d < search.DefaultDebounce {
		return config, fmt.Errorf("search.debounce %s is below the minimum of %s", d, search.DefaultDebounce)
	}

	return config, nil
}
