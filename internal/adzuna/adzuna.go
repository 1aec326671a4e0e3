// Package adzuna is a job index client for the Adzuna search API.
package adzuna

import (
	"context"
	"net/http"
	"time"

	"github.com/spigell/job-scout/internal/jobs"
	"github.com/spigell/job-scout/internal/logger"

	"go.uber.org/zap"
)

const (
	apiURL          = "https://api.adzuna.com/v1/api/jobs"
	defaultCountry  = "us"
	defaultLocation = "remote"
	userAgent       = "spigell/job-scout"
	httpTimeout     = 15 * time.Second
)

// Client fetches postings from Adzuna.
type Client struct {
	appID      string
	appKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	Country    string
	// Location is used when a search does not name one.
	Location string
}

var _ jobs.Index = (*Client)(nil)

func New(appID, appKey string, log *zap.Logger) *Client {
	return &Client{
		appID:  appID,
		appKey: appKey,
		logger: logger.WithFields(log, zap.String("index", "adzuna")),
		HTTPClient: &http.Client{
			Timeout: httpTimeout,
		},
		UserAgent: userAgent,
		APIURL:    apiURL,
		Country:   defaultCountry,
		Location:  defaultLocation,
	}
}

// Search fetches one page of postings matching params.
func (c *Client) Search(ctx context.Context, params jobs.Params) ([]jobs.Posting, error) {
	return c.search(ctx, params)
}
