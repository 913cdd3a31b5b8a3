// Package iovocab implements the vocabulary.Resolver and
// vocabulary.Cache interfaces against a remote term authority. This is
// an impure I/O package that performs HTTP fetches and keeps a
// sqlite-backed term cache.
package iovocab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/emso-eric/metadata-harmonizer/pkg/config"
	"github.com/emso-eric/metadata-harmonizer/pkg/vocabulary"
	"github.com/gnames/gnfmt"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// maxTermBody caps the authority response size; term records are tiny.
const maxTermBody = 1 << 20

// Option configures the resolver.
type Option func(*resolver)

// WithProgress shows a progress bar during batch resolution.
func WithProgress() Option {
	return func(r *resolver) { r.progress = true }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *resolver) { r.client = client }
}

type resolver struct {
	cfg      *config.Config
	client   *http.Client
	cache    vocabulary.Cache
	group    singleflight.Group
	progress bool

	mu    sync.Mutex
	terms map[string]vocabulary.Term
}

// NewResolver creates a Resolver that fetches terms from the authority,
// falling back to the cache when the authority is unreachable. Each
// distinct URI is fetched at most once per resolver lifetime.
func NewResolver(
	cfg *config.Config, cache vocabulary.Cache, opts ...Option,
) vocabulary.Resolver {
	res := &resolver{
		cfg:    cfg,
		cache:  cache,
		client: &http.Client{},
		terms:  make(map[string]vocabulary.Term),
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Resolve returns the term for a single URI.
func (r *resolver) Resolve(
	ctx context.Context, uri string,
) (vocabulary.Term, error) {
	uri = vocabulary.HarmonizeURI(uri)
	if uri == "" {
		return vocabulary.Term{}, NewUnresolvedTermError(uri, 0,
			errors.New("empty term URI"))
	}
	if term, ok := r.memory(uri); ok {
		return term, nil
	}

	// collapse concurrent lookups of the same URI into one fetch
	v, err, _ := r.group.Do(uri, func() (any, error) {
		if term, ok := r.memory(uri); ok {
			return term, nil
		}
		return r.lookup(ctx, uri)
	})
	if err != nil {
		return vocabulary.Term{}, err
	}
	return v.(vocabulary.Term), nil
}

// ResolveBatch dedupes the URIs and resolves them on a bounded worker
// pool. The returned map is keyed by harmonized URI.
func (r *resolver) ResolveBatch(
	ctx context.Context, uris []string,
) (map[string]vocabulary.Term, error) {
	unique := make(map[string]struct{}, len(uris))
	for _, uri := range uris {
		if h := vocabulary.HarmonizeURI(uri); h != "" {
			unique[h] = struct{}{}
		}
	}
	res := make(map[string]vocabulary.Term, len(unique))
	if len(unique) == 0 {
		return res, nil
	}

	var bar *pb.ProgressBar
	if r.progress {
		bar = pb.Full.Start(len(unique))
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.JobsNumber)
	for uri := range unique {
		g.Go(func() error {
			term, err := r.Resolve(gctx, uri)
			if err != nil {
				return err
			}
			mu.Lock()
			res[uri] = term
			mu.Unlock()
			if bar != nil {
				bar.Increment()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("resolved vocabulary terms",
		"count", humanize.Comma(int64(len(res))))
	return res, nil
}

// lookup fetches one term and commits it to the cache before any
// waiter sees it. On fetch exhaustion a cached value, if present,
// stands in for the live one.
func (r *resolver) lookup(
	ctx context.Context, uri string,
) (vocabulary.Term, error) {
	term, attempts, err := r.fetch(ctx, uri)
	if err != nil {
		if cached, ok, cerr := r.cache.Get(uri); cerr == nil && ok {
			slog.Warn("authority unreachable, using cached term",
				"uri", uri, "error", err)
			r.remember(cached)
			return cached, nil
		}
		return vocabulary.Term{}, NewUnresolvedTermError(uri, attempts, err)
	}
	if err := r.cache.Put(term); err != nil {
		slog.Warn("cannot cache vocabulary term", "uri", uri, "error", err)
	}
	r.remember(term)
	return term, nil
}

// fetch runs the bounded retry loop. Transport errors and 5xx are
// transient; 4xx and unparsable bodies are permanent and stop the loop.
func (r *resolver) fetch(
	ctx context.Context, uri string,
) (vocabulary.Term, int, error) {
	var lastErr error
	var attempts int
	delay := time.Duration(r.cfg.Vocabulary.RetryDelayMs) * time.Millisecond

	for i := 0; i <= r.cfg.Vocabulary.MaxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return vocabulary.Term{}, attempts, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		attempts++

		term, err := r.fetchOnce(ctx, uri)
		if err == nil {
			return term, attempts, nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			break
		}
		slog.Debug("term fetch failed, retrying",
			"uri", uri, "attempt", attempts, "error", err)
	}
	return vocabulary.Term{}, attempts, lastErr
}

func (r *resolver) fetchOnce(
	ctx context.Context, uri string,
) (vocabulary.Term, error) {
	timeout := time.Duration(r.cfg.Vocabulary.TimeoutSec) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := uri
	if base := r.cfg.Vocabulary.AuthorityURL; base != "" {
		target = strings.TrimSuffix(base, "/") +
			"/?uri=" + url.QueryEscape(uri)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return vocabulary.Term{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return vocabulary.Term{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return vocabulary.Term{}, &permanentError{fmt.Errorf(
			"authority returned status %d for %s", resp.StatusCode, uri,
		)}
	default:
		return vocabulary.Term{}, fmt.Errorf(
			"authority returned status %d for %s", resp.StatusCode, uri,
		)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTermBody))
	if err != nil {
		return vocabulary.Term{}, err
	}

	enc := gnfmt.GNjson{}
	var term vocabulary.Term
	if err := enc.Decode(body, &term); err != nil {
		return vocabulary.Term{}, &permanentError{fmt.Errorf(
			"cannot parse term response for %s: %w", uri, err,
		)}
	}
	// the harmonized URI stays the cache key even if the authority
	// echoes a different form
	term.URI = uri
	return term, nil
}

func (r *resolver) memory(uri string) (vocabulary.Term, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	term, ok := r.terms[uri]
	return term, ok
}

func (r *resolver) remember(term vocabulary.Term) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terms[term.URI] = term
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }
