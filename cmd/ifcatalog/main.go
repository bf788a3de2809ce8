package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultIndexURL = "https://www.ifarchive.org/indexes/if-archive/games/zcode/"

var storyExt = regexp.MustCompile(`.*\.z[12345678]$`)

// Entry is one cataloged story file: its display name and the URL it can be
// fetched from. Unlike the teacher's scraper this tool never downloads the
// story itself - it only builds the index a developer uses to pull fixtures
// by hand as test cases are needed.
type Entry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func main() {
	indexURL := flag.String("index", defaultIndexURL, "URL of the archive index page to scrape")
	outPath := flag.String("out", "catalog.json", "path to write the catalog JSON to")
	flag.Parse()

	entries, err := scrape(*indexURL)
	if err != nil {
		fmt.Printf("Failed to build catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d story files\n", len(entries))

	if err := writeCatalog(*outPath, entries); err != nil {
		fmt.Printf("Failed to write catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote catalog to %s\n", *outPath)
}

func scrape(indexURL string) ([]Entry, error) {
	c := &http.Client{Timeout: 30 * time.Second}
	res, err := c.Get(indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetching index: %w", err)
	}
	defer res.Body.Close() // nolint:errcheck

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status code: %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing index html: %w", err)
	}

	base, err := baseURL(indexURL)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	doc.Find("dl dt").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Find("a").Attr("href")
		if !exists || !storyExt.MatchString(href) {
			return
		}
		entries = append(entries, Entry{
			Name: filepath.Base(href),
			URL:  base + href,
		})
	})
	return entries, nil
}

func baseURL(indexURL string) (string, error) {
	// The archive serves absolute paths from its own root regardless of
	// which index page was scraped, so the scheme+host prefix is all the
	// href needs prepended.
	i := 0
	slashes := 0
	for ; i < len(indexURL); i++ {
		if indexURL[i] == '/' {
			slashes++
			if slashes == 3 {
				break
			}
		}
	}
	if slashes < 3 {
		return "", fmt.Errorf("index URL %q has no host component", indexURL)
	}
	return indexURL[:i], nil
}

func writeCatalog(path string, entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
