package convert

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"csv2js/config"
)

type fetcher struct {
	client *http.Client
	cfg    *config.HTTPConfig
	log    *zap.Logger
}

func newFetcher(cfg *config.HTTPConfig, log *zap.Logger) *fetcher {
	return &fetcher{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		log:    log.Named("fetch"),
	}
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && len(u.Host) > 0
}

// labelFromURL returns last non-empty path segment of the URL or its host.
func labelFromURL(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	if base := path.Base(u.Path); base != "/" && base != "." {
		return base
	}
	return u.Host
}

func (f *fetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	if token := f.cfg.Token.Value(); len(token) > 0 {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected response status %q from %s", resp.Status, u)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response from %s: %w", u, err)
	}
	f.log.Debug("Fetched", zap.String("url", u), zap.Int("size", len(data)), zap.Duration("elapsed", time.Since(start)))
	return data, nil
}

// getAll downloads all URLs concurrently, results are in the order of urls.
// First failure cancels remaining requests.
func (f *fetcher) getAll(ctx context.Context, urls []string) ([][]byte, error) {
	results := make([][]byte, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, f.cfg.Concurrency))
	for i, u := range urls {
		g.Go(func() error {
			data, err := f.get(gctx, u)
			if err != nil {
				return fmt.Errorf("unable to fetch %s: %w", u, err)
			}
			results[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// getText fetches small text document, such as input description.
func (f *fetcher) getText(ctx context.Context, u string) (string, error) {
	data, err := f.get(ctx, u)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}
