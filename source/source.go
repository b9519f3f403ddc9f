// Package source enumerates the raw byte artifacts an archive analyzer
// reads from: one side's primary artifacts and its supplementary
// (dependency-only) artifacts, addressed by an afs URL.
package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"

	"github.com/viant/apidiff/kerr"
)

// defaultMaxDownloadAttempts bounds the retry loop walk runs against a
// single enumerated artifact before giving up on it. Enumeration (Walk)
// only names a file; the byte content behind that name is fetched lazily,
// one DownloadWithURL call per artifact, and a remote afs backend (s3://,
// gs://, ...) can fail that fetch transiently without the artifact itself
// being gone.
const defaultMaxDownloadAttempts = 10

// Artifact is one enumerated source file: its logical name (used as the
// element archive tag) and its raw bytes.
type Artifact struct {
	Name string
	Data []byte
}

// Set enumerates the primary and supplementary artifacts for one side of a
// comparison, backed by afs.Service so any URL scheme afs supports (local
// path, s3://, gs://, ...) works without the caller caring which.
type Set struct {
	fs                afs.Service
	primaryURL        string
	supplementaryURLs []string

	// MaxDownloadAttempts bounds how many times walk retries a single
	// artifact's lazy DownloadWithURL fetch before converting the failure
	// into a fatal kerr.ErrAnalysisCompletionFailure. Zero means
	// defaultMaxDownloadAttempts.
	MaxDownloadAttempts int
}

// New builds a Set rooted at primaryURL, with zero or more supplementary
// roots (e.g. a module's direct dependencies, only used to resolve
// cross-references during analysis, never primary elements themselves).
func New(primaryURL string, supplementaryURLs ...string) *Set {
	return &Set{fs: afs.New(), primaryURL: primaryURL, supplementaryURLs: supplementaryURLs}
}

// Primary enumerates every file artifact under the primary root.
func (s *Set) Primary(ctx context.Context) ([]Artifact, error) {
	return s.walk(ctx, s.primaryURL)
}

// Supplementary enumerates every file artifact under every supplementary
// root, in the order the roots were given.
func (s *Set) Supplementary(ctx context.Context) ([]Artifact, error) {
	var out []Artifact
	for _, root := range s.supplementaryURLs {
		artifacts, err := s.walk(ctx, root)
		if err != nil {
			return nil, err
		}
		out = append(out, artifacts...)
	}
	return out, nil
}

func (s *Set) walk(ctx context.Context, root string) ([]Artifact, error) {
	var names []string
	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return true, nil
		}
		names = append(names, url.Join(baseURL, parent, info.Name()))
		return true, nil
	}
	if err := s.fs.Walk(ctx, root, visitor); err != nil {
		return nil, fmt.Errorf("source: walking %s: %w", root, err)
	}
	out := make([]Artifact, 0, len(names))
	for _, name := range names {
		data, err := s.download(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, Artifact{Name: name, Data: data})
	}
	return out, nil
}

// download fetches one artifact's bytes, retrying a failed attempt up to
// MaxDownloadAttempts times before giving up.
func (s *Set) download(ctx context.Context, name string) ([]byte, error) {
	max := s.MaxDownloadAttempts
	if max <= 0 {
		max = defaultMaxDownloadAttempts
	}
	return retryDownload(ctx, name, max, s.fs.DownloadWithURL)
}

// retryDownload calls fetch for name up to max times, returning its first
// success. Exhausting every attempt reports
// kerr.ErrAnalysisCompletionFailure rather than the last raw error, so a
// caller can recognize this as the bounded-retry policy's terminal case
// rather than an ordinary artifact-unresolved failure. Factored out of
// Set.download so the retry/give-up behavior can be exercised without a
// real (or faked) afs.Service.
func retryDownload(ctx context.Context, name string, max int, fetch func(ctx context.Context, url string) ([]byte, error)) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= max; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("source: downloading %s: %w", name, err)
		}
		data, err := fetch(ctx, name)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("source: downloading %s after %d attempts: %w: %v", name, max, kerr.ErrAnalysisCompletionFailure, lastErr)
}
