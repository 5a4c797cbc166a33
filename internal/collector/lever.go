package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-jobsearch-pipeline/internal/httpclient"
	"go-jobsearch-pipeline/internal/models"
)

const leverAPIBase = "https://api.lever.co"

// Lever collects from the public Lever postings API.
type Lever struct {
	client    *httpclient.Client
	matcher   *Matcher
	companies []string
	baseURL   string
}

func NewLever(client *httpclient.Client, matcher *Matcher, companies []string) *Lever {
	return &Lever{
		client:    client,
		matcher:   matcher,
		companies: companies,
		baseURL:   leverAPIBase,
	}
}

func (l *Lever) Name() string { return "lever" }

type leverPosting struct {
	Text       string `json:"text"`
	HostedURL  string `json:"hostedUrl"`
	CreatedAt  int64  `json:"createdAt"`
	Categories struct {
		Team     string `json:"team"`
		Location string `json:"location"`
	} `json:"categories"`
	DescriptionPlain string `json:"descriptionPlain"`
	Description      string `json:"description"`
}

func (l *Lever) Collect(ctx context.Context) ([]models.Posting, error) {
	var postings []models.Posting

	for _, company := range l.companies {
		url := fmt.Sprintf("%s/v0/postings/%s?mode=json", l.baseURL, company)

		var board []leverPosting
		if err := l.client.GetJSON(ctx, url, &board); err != nil {
			log.Printf("⚠️ lever %s: %v", company, err)
			continue
		}

		for _, j := range board {
			p := normalizeLever(company, j)
			if l.matcher.Match(p) {
				postings = append(postings, p)
			}
		}
	}
	return postings, nil
}

func normalizeLever(company string, j leverPosting) models.Posting {
	if j.Categories.Team != "" {
		company = j.Categories.Team
	}

	jd := j.DescriptionPlain
	if jd == "" {
		jd = j.Description
	}

	postedAt := ""
	if j.CreatedAt > 0 {
		postedAt = time.UnixMilli(j.CreatedAt).UTC().Format("2006-01-02")
	}

	return models.Posting{
		Title:    j.Text,
		Company:  company,
		Location: j.Categories.Location,
		URL:      j.HostedURL,
		Source:   "lever",
		PostedAt: postedAt,
		JD:       jd,
	}
}
