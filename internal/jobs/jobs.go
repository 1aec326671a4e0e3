// Package jobs defines job postings and the index they are fetched from.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// PageSize is the fixed number of postings requested per page. A shorter page
// marks the end of the results.
const PageSize = 10

// Posting is a single job posting. ID is unique within a result set and is
// used as the display key.
type Posting struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	ApplyURL    string   `json:"applyUrl"`
	SalaryMin   *float64 `json:"salaryMin,omitempty"`
	SalaryMax   *float64 `json:"salaryMax,omitempty"`
}

// Params select one page of an index search.
type Params struct {
	Query          string
	Page           int
	ResultsPerPage int
	Location       string
}

// Index searches an external job index.
type Index interface {
	Search(ctx context.Context, params Params) ([]Posting, error)
}

// Postings is an ordered list of postings.
type Postings struct {
	Items []Posting `json:"items"`
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) FindByID(id string) *Posting {
	for i := range p.Items {
		if p.Items[i].ID == id {
			return &p.Items[i]
		}
	}
	return nil
}

func (p *Postings) IDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, posting := range p.Items {
		ids = append(ids, posting.ID)
	}
	return ids
}

// Exclude removes the postings matching drop, keeping the order of the rest,
// and returns the removed IDs.
func (p *Postings) Exclude(drop func(Posting) bool) []string {
	var excluded []string
	kept := p.Items[:0]
	for _, posting := range p.Items {
		if drop(posting) {
			excluded = append(excluded, posting.ID)
			continue
		}
		kept = append(kept, posting)
	}
	p.Items = kept
	return excluded
}

// LoadFromFile reads postings previously written by DumpToTmpFile. An empty
// file yields an empty list.
func LoadFromFile(path string) (*Postings, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &Postings{}, nil
	}

	var postings Postings
	if err := json.NewDecoder(file).Decode(&postings); err != nil {
		return nil, err
	}
	return &postings, nil
}

// DumpToTmpFile writes the postings as indented JSON into a new temp file.
func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByCompany groups short posting summaries by company name.
func (p *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, posting := range p.Items {
		company := posting.Company
		if company == "" {
			company = "unknown"
		}
		report[company] = append(report[company], map[string]string{
			"title":    posting.Title,
			"url":      posting.ApplyURL,
			"location": posting.Location,
			"salary":   posting.SalaryRange(),
		})
	}
	return report
}

// Companies returns the distinct company names, sorted.
func (p *Postings) Companies() []string {
	seen := make(map[string]struct{})
	for _, posting := range p.Items {
		seen[posting.Company] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// SalaryRange renders the salary bounds, or "" when none is known.
func (p Posting) SalaryRange() string {
	switch {
	case p.SalaryMin != nil && p.SalaryMax != nil:
		return fmt.Sprintf("%.0f-%.0f", *p.SalaryMin, *p.SalaryMax)
	case p.SalaryMin != nil:
		return fmt.Sprintf("from %.0f", *p.SalaryMin)
	case p.SalaryMax != nil:
		return fmt.Sprintf("up to %.0f", *p.SalaryMax)
	default:
		return ""
	}
}
