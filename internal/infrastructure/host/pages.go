package host

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"SavePublish/internal/domain"
	"SavePublish/internal/search"
)

const (
	defaultTargetsPage   = "/sitecore/admin/publishing-targets"
	defaultLanguagesPage = "/sitecore/admin/languages"
	defaultIndexesPage   = "/sitecore/admin/indexes"
)

// Targets walks the publishing-targets tree and keeps the targets whose
// database exists on the host, in tree order. Two targets pointing at the
// same database are both returned.
func (c *Client) Targets(ctx context.Context) ([]domain.Database, error) {
	doc, err := c.fetchDocument(ctx, pageOr(c.targetsPage, defaultTargetsPage))
	if err != nil {
		return nil, fmt.Errorf("publishing targets: %w", err)
	}

	known, err := c.databases(ctx)
	if err != nil {
		return nil, err
	}

	names := attrValues(doc, "data-target-database", false)
	targets := make([]domain.Database, 0, len(names))
	for _, name := range names {
		if !known[strings.ToLower(name)] {
			c.debug("skip target without database", "database", name)
			continue
		}
		targets = append(targets, domain.Database{Name: name})
	}
	return targets, nil
}

// Languages lists content languages; codes that are not valid BCP 47 tags
// are skipped.
func (c *Client) Languages(ctx context.Context) ([]domain.Language, error) {
	doc, err := c.fetchDocument(ctx, pageOr(c.languagesPage, defaultLanguagesPage))
	if err != nil {
		return nil, fmt.Errorf("languages: %w", err)
	}

	codes := attrValues(doc, "data-language", true)
	languages := make([]domain.Language, 0, len(codes))
	for _, code := range codes {
		lang, err := domain.ParseLanguage(code)
		if err != nil {
			c.debug("skip language", "code", code, "error", err)
			continue
		}
		languages = append(languages, lang)
	}
	return languages, nil
}

// RegisterIndexes discovers the host search indexes and registers them.
func (c *Client) RegisterIndexes(ctx context.Context, reg *search.Registry) (int, error) {
	doc, err := c.fetchDocument(ctx, pageOr(c.indexesPage, defaultIndexesPage))
	if err != nil {
		return 0, fmt.Errorf("search indexes: %w", err)
	}

	names := attrValues(doc, "data-index-name", true)
	for _, name := range names {
		reg.Register(&index{client: c, name: name})
	}
	return len(names), nil
}

type index struct {
	client *Client
	name   string
}

func (i *index) Name() string {
	return i.name
}

// Refresh asks the host to re-index one item.
func (i *index) Refresh(ctx context.Context, ref domain.ItemRef) error {
	payload := map[string]any{
		"itemId":   ref.ID,
		"language": ref.Language,
		"version":  ref.Version,
	}
	return i.client.post(ctx, "/api/indexes/"+url.PathEscape(i.name)+"/refresh", payload, nil)
}

func (c *Client) databases(ctx context.Context) (map[string]bool, error) {
	var resp struct {
		Databases []string `json:"databases"`
	}
	if _, err := c.get(ctx, "/api/databases", nil, &resp); err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	known := make(map[string]bool, len(resp.Databases))
	for _, name := range resp.Databases {
		known[strings.ToLower(name)] = true
	}
	return known, nil
}

func (c *Client) fetchDocument(ctx context.Context, page string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+page, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("host returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// attrValues collects non-empty attribute values in document order,
// dropping repeats when distinct is set.
func attrValues(doc *goquery.Document, attr string, distinct bool) []string {
	var (
		values []string
		seen   = map[string]struct{}{}
	)
	doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
		value := strings.TrimSpace(s.AttrOr(attr, ""))
		if value == "" {
			return
		}
		if distinct {
			if _, ok := seen[value]; ok {
				return
			}
			seen[value] = struct{}{}
		}
		values = append(values, value)
	})
	return values
}

func pageOr(page, fallback string) string {
	if strings.TrimSpace(page) == "" {
		return fallback
	}
	return page
}
