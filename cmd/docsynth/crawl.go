package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/docsynth"
	"github.com/fwojciec/docsynth/categorize"
	"github.com/fwojciec/docsynth/crawl"
	"github.com/fwojciec/docsynth/fs"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	table, err := categorize.NewRuleTable(c.categoryMap())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docsynth.ErrorMessage(err))
		return err
	}

	cfg := crawl.Config{
		BaseURL:     c.URL,
		Include:     c.Include,
		Exclude:     c.Exclude,
		MaxPages:    c.MaxPages,
		RateLimit:   time.Duration(c.RateLimit * float64(time.Second)),
		Concurrency: c.Concurrency,
		Timeout:     c.Timeout,
	}
	result, err := deps.Crawler.Crawl(deps.Ctx, cfg, deps.progress(printProgress(deps)))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error crawling: %s\n", docsynth.ErrorMessage(err))
		return err
	}

	byCategory := make(map[string][]string)
	for _, a := range categorize.CategorizeAll(result.Pages, table) {
		byCategory[a.Category] = append(byCategory[a.Category], a.PageURL)
	}
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(deps.Stdout, "%s (%d)\n", name, len(byCategory[name]))
		for _, u := range byCategory[name] {
			fmt.Fprintf(deps.Stdout, "  %s\n", u)
		}
	}

	if c.Out != "" {
		if err := savePages(c.Out, result.Pages); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", docsynth.ErrorMessage(err))
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "Crawled %s\n", crawl.Summary(result))
	return nil
}

// categoryMap parses the --category flags. Keywords are comma separated.
func (c *CrawlCmd) categoryMap() docsynth.CategoryMap {
	m := make(docsynth.CategoryMap, len(c.Categories))
	for name, keywords := range c.Categories {
		var terms []string
		for _, kw := range strings.Split(keywords, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				terms = append(terms, kw)
			}
		}
		m[name] = terms
	}
	return m
}

func savePages(dir string, pages []*docsynth.PageRecord) error {
	w := fs.NewPageWriter(dir)
	for _, p := range pages {
		if err := w.Save(p); err != nil {
			_ = w.Abort()
			return err
		}
	}
	return w.Commit()
}
