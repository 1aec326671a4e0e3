// Package session ties the résumé pipeline, the job search and the chat of
// one active user together.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/advisor"
	"github.com/spigell/job-scout/internal/ai"
	"github.com/spigell/job-scout/internal/apperr"
	"github.com/spigell/job-scout/internal/jobs"
	"github.com/spigell/job-scout/internal/logger"
	"github.com/spigell/job-scout/internal/resume"
	"github.com/spigell/job-scout/internal/search"
	"github.com/spigell/job-scout/internal/store"
)

// ErrAnalysisInProgress is returned by Upload while another upload is analyzed.
var ErrAnalysisInProgress = errors.New("a resume is already being analyzed")

const (
	analyzingNotice = "Analyzing resume..."
	analyzedNotice  = "Resume analyzed. I've updated the job listings based on your skills and experience. Here are some keywords I found: %s. Let me know if you have any questions about the job listings or your job search!"
	failedNotice    = "Sorry, I encountered an error processing your resume. Please try again."
)

// Analyzer turns uploads into profiles.
type Analyzer interface {
	Validate(u resume.Upload) error
	Analyze(ctx context.Context, u resume.Upload) (*resume.Profile, error)
}

// Deps are the collaborators of a session.
type Deps struct {
	Index     jobs.Index
	Generator ai.Generator
	Embedders ai.EmbedderSource
	Keywords  store.KeywordStore
	// Pipeline defaults to resume.NewPipeline over Embedders and Keywords.
	Pipeline Analyzer
	Search   search.Options
}

type Session struct {
	id        string
	logger    *zap.Logger
	keywords  store.KeywordStore
	embedders ai.EmbedderSource
	pipeline  Analyzer
	search    *search.Controller
	chat      *advisor.Chat

	mu        sync.Mutex
	profile   *resume.Profile
	analyzing bool
}

func New(ctx context.Context, deps Deps, log *zap.Logger) *Session {
	id := uuid.NewString()
	log = logger.WithSession(log, id)

	if deps.Keywords == nil {
		deps.Keywords = store.NewMemory()
	}
	if deps.Pipeline == nil {
		deps.Pipeline = resume.NewPipeline(deps.Embedders, deps.Keywords, log.Named("resume"))
	}

	return &Session{
		id:        id,
		logger:    log,
		keywords:  deps.Keywords,
		embedders: deps.Embedders,
		pipeline:  deps.Pipeline,
		search:    search.New(ctx, deps.Index, deps.Search, log.Named("search")),
		chat:      advisor.NewChat(advisor.New(deps.Generator, log.Named("advisor")), log.Named("chat")),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Start seeds the search query from the persisted keywords of the last
// analyzed résumé. A read failure is returned but leaves the session usable.
func (s *Session) Start(ctx context.Context) error {
	kws, err := s.keywords.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to read persisted keywords", zap.Error(err))
		return fmt.Errorf("load %s: %w", store.KeywordsKey, err)
	}

	query := strings.Join(kws, " ")
	if query == "" {
		s.logger.Info("session started without persisted keywords")
		return nil
	}

	s.logger.Info("session started", zap.String(logger.FieldQuery, query))
	s.search.SetQuery(query)

	return nil
}

// Upload analyzes a résumé and points the search at its keywords. Invalid
// uploads are rejected before the transcript or the search is touched.
func (s *Session) Upload(ctx context.Context, u resume.Upload) (*resume.Profile, error) {
	if err := s.pipeline.Validate(u); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.analyzing {
		s.mu.Unlock()
		return nil, ErrAnalysisInProgress
	}
	s.analyzing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.analyzing = false
		s.mu.Unlock()
	}()

	s.chat.Notify(analyzingNotice)

	profile, err := s.pipeline.Analyze(ctx, u)
	if err != nil {
		s.logger.Warn("resume analysis failed", zap.String("name", u.Name), zap.Error(err))
		if !apperr.Is(err, apperr.Validation) {
			s.chat.Notify(failedNotice)
		}
		return nil, err
	}

	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()

	s.search.SetQuery(profile.Query())
	s.chat.Notify(fmt.Sprintf(analyzedNotice, strings.Join(profile.Keywords, ", ")))

	return profile, nil
}

// Ask sends one chat turn using the loaded embedding model and the current
// résumé embedding.
func (s *Session) Ask(ctx context.Context, text string) (advisor.Reply, error) {
	var model ai.Embedder
	if s.embedders != nil {
		model, _ = s.embedders.Embedder()
	}

	var vector ai.Vector
	if profile := s.Profile(); profile != nil {
		vector = profile.Embedding
	}

	return s.chat.Submit(ctx, text, model, vector)
}

// Profile returns the current résumé profile or nil.
func (s *Session) Profile() *resume.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.profile
}

func (s *Session) Search() *search.Controller {
	return s.search
}

func (s *Session) Chat() *advisor.Chat {
	return s.chat
}

// Close stops in-flight fetches.
func (s *Session) Close() {
	s.search.Close()
	s.logger.Debug("session closed")
}
