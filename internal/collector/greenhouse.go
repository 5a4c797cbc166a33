package collector

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go-jobsearch-pipeline/internal/httpclient"
	"go-jobsearch-pipeline/internal/models"
)

const greenhouseAPIBase = "https://boards-api.greenhouse.io"

// Greenhouse collects from the public Greenhouse boards API, one request
// per configured company. A failing company is logged and skipped, never
// fatal to the run.
type Greenhouse struct {
	client    *httpclient.Client
	matcher   *Matcher
	companies []string
	baseURL   string
}

func NewGreenhouse(client *httpclient.Client, matcher *Matcher, companies []string) *Greenhouse {
	return &Greenhouse{
		client:    client,
		matcher:   matcher,
		companies: companies,
		baseURL:   greenhouseAPIBase,
	}
}

func (g *Greenhouse) Name() string { return "greenhouse" }

type greenhouseJob struct {
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
}

type greenhouseBoard struct {
	Jobs []greenhouseJob `json:"jobs"`
}

func (g *Greenhouse) Collect(ctx context.Context) ([]models.Posting, error) {
	var postings []models.Posting

	for _, company := range g.companies {
		url := fmt.Sprintf("%s/v1/boards/%s/jobs", g.baseURL, company)

		var board greenhouseBoard
		if err := g.client.GetJSON(ctx, url, &board); err != nil {
			log.Printf("⚠️ greenhouse %s: %v", company, err)
			continue
		}

		for _, j := range board.Jobs {
			p := normalizeGreenhouse(j)
			if g.matcher.Match(p) {
				postings = append(postings, p)
			}
		}
	}
	return postings, nil
}

func normalizeGreenhouse(j greenhouseJob) models.Posting {
	postedAt := j.UpdatedAt
	if postedAt == "" {
		postedAt = j.AbsoluteURL
	}
	return models.Posting{
		Title:    j.Title,
		Company:  companyFromBoardURL(j.AbsoluteURL),
		Location: j.Location.Name,
		URL:      j.AbsoluteURL,
		Source:   "greenhouse",
		PostedAt: postedAt,
	}
}

// companyFromBoardURL pulls the board slug out of a URL like
// https://boards.greenhouse.io/<company>/jobs/123.
func companyFromBoardURL(url string) string {
	parts := strings.Split(url, "/")
	if len(parts) > 3 && parts[3] != "" {
		return parts[3]
	}
	return "unknown"
}
