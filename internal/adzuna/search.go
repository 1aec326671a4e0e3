package adzuna

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/job-scout/internal/jobs"
)

type searchResponse struct {
	Results []map[string]any `json:"results"`
	Count   int              `json:"count"`
}

// result mirrors a single Adzuna listing. Adzuna is not consistent about the
// type of id, so results are decoded weakly from raw maps.
type result struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	RedirectURL string   `json:"redirect_url"`
	SalaryMin   *float64 `json:"salary_min"`
	SalaryMax   *float64 `json:"salary_max"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
}

func (c *Client) search(ctx context.Context, params jobs.Params) ([]jobs.Posting, error) {
	if c.appID == "" || c.appKey == "" {
		return nil, errors.New("adzuna app id and app key are required")
	}

	page := params.Page
	if page < 1 {
		page = 1
	}

	endpoint := fmt.Sprintf("%s/%s/search/%d", strings.TrimRight(c.APIURL, "/"), c.Country, page)

	var response searchResponse
	if err := c.getJSON(ctx, endpoint, c.buildParams(params), &response); err != nil {
		return nil, fmt.Errorf("adzuna search page %d: %w", page, err)
	}

	postings, err := decodeResults(response.Results)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got response from adzuna",
		zap.Int("page", page),
		zap.Int("results", len(postings)),
		zap.Int("count", response.Count),
	)

	return postings, nil
}

func (c *Client) buildParams(params jobs.Params) url.Values {
	perPage := params.ResultsPerPage
	if perPage <= 0 {
		perPage = jobs.PageSize
	}

	location := strings.TrimSpace(params.Location)
	if location == "" {
		location = c.Location
	}

	q := url.Values{}
	q.Set("app_id", c.appID)
	q.Set("app_key", c.appKey)
	q.Set("results_per_page", strconv.Itoa(perPage))
	q.Set("what", params.Query)
	if location != "" {
		q.Set("where", location)
	}
	q.Set("content-type", contentType)

	return q
}

func decodeResults(items []map[string]any) ([]jobs.Posting, error) {
	postings := make([]jobs.Posting, 0, len(items))

	for i, item := range items {
		var r result
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &r,
			TagName:          "json",
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(item); err != nil {
			return nil, fmt.Errorf("decode result %d: %w", i, err)
		}

		postings = append(postings, jobs.Posting{
			ID:          r.ID,
			Title:       r.Title,
			Company:     r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: r.Description,
			ApplyURL:    r.RedirectURL,
			SalaryMin:   r.SalaryMin,
			SalaryMax:   r.SalaryMax,
		})
	}

	return postings, nil
}
