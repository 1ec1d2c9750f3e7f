// Package datasource fetches widget source documents. A source is a
// local JSON file or an HTTP endpoint behind one interface; the
// Client in front adds a short-lived byte cache so a burst of refresh
// requests for the same widget performs one real read.
package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// maxDocumentSize bounds how much of a source document is read.
// Intranet feeds are small; anything past this is a broken upstream.
const maxDocumentSize = 8 << 20

// Source is one fetchable document location.
type Source interface {
	// Location returns the path or URL the source reads from.
	Location() string

	// Fetch reads the current document bytes.
	Fetch(ctx context.Context) ([]byte, error)
}

// New returns a source for the given location: http(s) URLs become
// HTTP sources, everything else a file source.
func New(location string) Source {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return NewHTTPSource(location, nil)
	}
	return FileSource{Path: location}
}

// FileSource reads a document from the local filesystem.
type FileSource struct {
	// Path is the file to read.
	Path string
}

// Location implements Source.
func (s FileSource) Location() string { return s.Path }

// Fetch implements Source.
func (s FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("datasource: open %s: %w", s.Path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("datasource: read %s: %w", s.Path, err)
	}
	return data, nil
}

// HTTPSource reads a document with a GET request. Any non-2xx status
// is an error; the body is never partially used.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource returns an HTTP source. A nil client gets a default
// with a 10 second timeout.
func NewHTTPSource(url string, client *http.Client) HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return HTTPSource{url: url, client: client}
}

// Location implements Source.
func (s HTTPSource) Location() string { return s.url }

// Fetch implements Source.
func (s HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("datasource: build request %s: %w", s.url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("datasource: fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("datasource: fetch %s: unexpected status %s", s.url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("datasource: read %s: %w", s.url, err)
	}
	return data, nil
}
