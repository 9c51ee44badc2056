// Package jd loads job description text from local files or job posting URLs.
package jd

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// maxPostingBytes caps how much of a job posting page is read.
const maxPostingBytes = 2 << 20

// Load retrieves job description text. input is either a file path or an
// http(s) URL; fetched HTML pages are reduced to their visible text.
func Load(ctx context.Context, input string) (text string, err error) {
	parsed, parseErr := url.Parse(input)
	if parseErr == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		text, err = loadFromURL(ctx, input)
		if err != nil {
			err = errors.Wrapf(err, "failed to load job description from URL %s", input)
		}
		return text, err
	}

	text, err = loadFromFile(input)
	if err != nil {
		err = errors.Wrapf(err, "failed to load job description from file %s", input)
	}
	return text, err
}

// loadFromFile reads job description text from disk.
func loadFromFile(path string) (text string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return text, err
	}
	text = string(data)
	if strings.TrimSpace(text) == "" {
		err = errors.New("file is empty")
	}
	return text, err
}

// loadFromURL fetches a job posting page and strips it down to text.
func loadFromURL(ctx context.Context, postingURL string) (text string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, postingURL, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create request")
		return text, err
	}
	req.Header.Set("User-Agent", "shortlist/1.0")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		err = errors.Wrap(err, "request failed")
		return text, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("request returned status %d", resp.StatusCode)
		return text, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPostingBytes))
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return text, err
	}

	text = StripHTML(string(body))
	if text == "" {
		err = errors.New("page contained no readable text")
	}
	return text, err
}

// StripHTML reduces an HTML page to its visible text. Script and style
// blocks are removed wholesale, then remaining tags are dropped.
func StripHTML(html string) (text string) {
	text = removeBlock(html, "script")
	text = removeBlock(text, "style")

	var b strings.Builder
	inTag := false
	for _, r := range text {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune(' ')
		case !inTag:
			b.WriteRune(r)
		}
	}

	text = strings.Join(strings.Fields(b.String()), " ")
	return text
}

// removeBlock removes every <tag>...</tag> block including its content.
func removeBlock(html, tag string) (result string) {
	result = html
	openTag := "<" + tag
	closeTag := "</" + tag + ">"
	for {
		start := strings.Index(result, openTag)
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], closeTag)
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+len(closeTag):]
	}
	return result
}
