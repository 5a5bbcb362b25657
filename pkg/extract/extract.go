// Package extract pulls image URLs out of HTML pages and JSON feeds,
// feeding the prefetch pipeline.
package extract

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/itchyny/gojq"
	"golang.org/x/net/html"
)

// PageImages parses an HTML document and returns the absolute image
// URLs referenced by <img> elements (src, data-src and srcset),
// deduplicated in document order. base resolves relative references.
func PageImages(r io.Reader, base *url.URL) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var urls []string
	seen := make(map[string]bool)
	add := func(ref string) {
		abs, ok := resolve(base, ref)
		if !ok || seen[abs] {
			return
		}
		seen[abs] = true
		urls = append(urls, abs)
	}

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		for _, ref := range imgRefs(sel.Get(0)) {
			add(ref)
		}
	})

	return urls, nil
}

// imgRefs returns every image reference carried by an <img> node:
// src, lazy-loading data-src, and all srcset candidates.
func imgRefs(node *html.Node) []string {
	var refs []string
	for _, attr := range node.Attr {
		switch attr.Key {
		case "src", "data-src":
			refs = append(refs, attr.Val)
		case "srcset":
			for _, candidate := range strings.Split(attr.Val, ",") {
				fields := strings.Fields(strings.TrimSpace(candidate))
				if len(fields) > 0 {
					refs = append(refs, fields[0])
				}
			}
		}
	}
	return refs
}

func resolve(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file" {
		return "", false
	}
	return u.String(), true
}

// FeedImages runs a jq filter over a JSON document and collects every
// string the filter emits, flattening arrays one level.
func FeedImages(data []byte, query string) ([]string, error) {
	q, err := gojq.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	var urls []string
	seen := make(map[string]bool)
	collect := func(v any) {
		s, ok := v.(string)
		if !ok || s == "" || seen[s] {
			return
		}
		seen[s] = true
		urls = append(urls, s)
	}

	iter := q.Run(doc)
	for {
		res, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := res.(error); ok {
			return nil, err
		}
		if arr, ok := res.([]any); ok {
			for _, v := range arr {
				collect(v)
			}
			continue
		}
		collect(res)
	}

	return urls, nil
}
