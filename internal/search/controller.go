// Package search drives the paginated job list of a session.
package search

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/apperr"
	"github.com/spigell/job-scout/internal/jobs"
	"github.com/spigell/job-scout/internal/logger"
)

// State is a snapshot of the controller.
type State struct {
	Query       string
	Jobs        []jobs.Posting
	CurrentPage int
	HasMore     bool
	Loading     bool
	Err         error
}

// PageFilter post-processes a fetched page before it is merged.
type PageFilter interface {
	Apply(ctx context.Context, page []jobs.Posting) ([]jobs.Posting, error)
}

// Options configure a Controller.
type Options struct {
	// Location is passed to every index search.
	Location string
	// Filter is applied to each page after HasMore has been computed from
	// the unfiltered page length.
	Filter PageFilter
	// OnChange receives a snapshot after every state transition. It is called
	// with the controller lock held and must not call back into the controller.
	OnChange func(State)
}

// Controller keeps the accumulated postings for the live query. At most one
// fetch result is ever applied per query generation; results for an older
// query or generation are discarded on arrival.
type Controller struct {
	index  jobs.Index
	opts   Options
	logger *zap.Logger

	base   context.Context
	stop   context.CancelFunc
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State
	generation uint64
	loaded     bool
	closed     bool

	// inflight counts dispatched fetches; settled is closed when it drops
	// back to zero.
	inflight int
	settled  chan struct{}
}

// New returns an idle controller. Fetches run on contexts derived from ctx.
func New(ctx context.Context, index jobs.Index, opts Options, log *zap.Logger) *Controller {
	base, stop := context.WithCancel(ctx)

	return &Controller{
		index:  index,
		opts:   opts,
		logger: logger.OrNop(log),
		base:   base,
		stop:   stop,
		state:  State{CurrentPage: 1},
	}
}

// SetQuery replaces the query, clears the accumulated postings and fetches
// page 1. An empty query clears the list without fetching.
func (c *Controller) SetQuery(term string) {
	term = strings.TrimSpace(term)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	c.state = State{
		Query:       term,
		CurrentPage: 1,
		HasMore:     term != "",
	}
	c.loaded = false

	if term == "" {
		c.logger.Debug("query cleared")
		c.notify()
		return
	}

	c.logger.Info("query changed", zap.String(logger.FieldQuery, term))
	c.dispatch(term, 1)
}

// LoadMore fetches the next page of the live query. It does nothing while a
// fetch is in flight or when the last page was short. Until a page has
// landed for the live query it retries page 1.
func (c *Controller) LoadMore() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state.Loading || !c.state.HasMore || c.state.Query == "" {
		return
	}

	next := c.state.CurrentPage + 1
	if !c.loaded {
		next = 1
	}

	c.dispatch(c.state.Query, next)
}

// OnNearEndOfList is the presentation-layer trigger for LoadMore.
func (c *Controller) OnNearEndOfList() {
	c.LoadMore()
}

// State returns a snapshot that is safe to keep.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot()
}

// Wait blocks until every dispatched fetch has settled, including fetches
// dispatched while it is waiting.
func (c *Controller) Wait() {
	for {
		c.mu.Lock()
		if c.inflight == 0 {
			c.mu.Unlock()
			return
		}
		settled := c.settled
		c.mu.Unlock()

		<-settled
	}
}

// Close cancels in-flight fetches and waits for them to settle. Later calls
// to SetQuery and LoadMore are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.stop()
	c.Wait()
}

// dispatch must be called with c.mu held.
func (c *Controller) dispatch(query string, page int) {
	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel

	generation := c.generation
	c.state.Loading = true
	c.state.Err = nil
	c.notify()

	c.logger.Debug("fetching page", zap.String(logger.FieldQuery, query), zap.Int("page", page))

	if c.inflight == 0 {
		c.settled = make(chan struct{})
	}
	c.inflight++

	go func() {
		defer c.done()
		defer cancel()

		postings, err := c.index.Search(ctx, jobs.Params{
			Query:          query,
			Page:           page,
			ResultsPerPage: jobs.PageSize,
			Location:       c.opts.Location,
		})

		received := len(postings)
		if err == nil && c.opts.Filter != nil {
			postings, err = c.opts.Filter.Apply(ctx, postings)
		}

		c.complete(query, generation, page, postings, received, err)
	}()
}

// complete applies a fetch result. received is the page length before
// filtering and alone decides HasMore.
func (c *Controller) complete(query string, generation uint64, page int, postings []jobs.Posting, received int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if query != c.state.Query || generation != c.generation {
		c.logger.Debug("discarding stale page",
			zap.String(logger.FieldQuery, query),
			zap.Int("page", page),
			zap.String("live_query", c.state.Query),
		)
		return
	}

	c.state.Loading = false

	if err != nil {
		c.state.Err = apperr.New(apperr.Fetch, "search "+query, err)
		c.logger.Warn("fetch failed",
			zap.String(logger.FieldQuery, query),
			zap.Int("page", page),
			zap.Error(err),
		)
		c.notify()
		return
	}

	c.loaded = true
	if page == 1 {
		c.state.Jobs = merge(nil, postings)
	} else {
		c.state.Jobs = merge(c.state.Jobs, postings)
	}

	if received > 0 {
		c.state.CurrentPage = page
	}
	c.state.HasMore = received == jobs.PageSize

	c.logger.Info("page loaded",
		zap.String(logger.FieldQuery, query),
		zap.Int("page", page),
		zap.Int("received", received),
		zap.Int("kept", len(postings)),
		zap.Int("total", len(c.state.Jobs)),
		zap.Bool("has_more", c.state.HasMore),
	)
	c.notify()
}

func (c *Controller) done() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inflight--
	if c.inflight == 0 {
		close(c.settled)
	}
}

// merge appends postings to list. A posting whose ID is already present
// replaces the earlier one in place.
func merge(list, postings []jobs.Posting) []jobs.Posting {
	index := make(map[string]int, len(list)+len(postings))
	for i, posting := range list {
		index[posting.ID] = i
	}

	for _, posting := range postings {
		if i, ok := index[posting.ID]; ok {
			list[i] = posting
			continue
		}
		index[posting.ID] = len(list)
		list = append(list, posting)
	}

	return list
}

func (c *Controller) snapshot() State {
	s := c.state
	s.Jobs = append([]jobs.Posting(nil), c.state.Jobs...)
	return s
}

func (c *Controller) notify() {
	if c.opts.OnChange != nil {
		c.opts.OnChange(c.snapshot())
	}
}
