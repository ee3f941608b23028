// Package offline is the server-side counterpart of the app's service
// worker: an asset gateway that precaches a manifest, serves network-first
// with cache fallback, and keeps one versioned cache per deploy.
package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrNoEntry = errors.New("no cache entry")

type Options struct {
	// Version names the active cache ("day-segment-tracker-v1").
	Version string
	// NamePrefix identifies this app's caches; activation deletes every
	// cache with the prefix except the current version.
	NamePrefix string
	// OfflinePage is the path of the fallback page served when a
	// navigation request cannot reach the network.
	OfflinePage string
	// APIPathSegment marks URLs that must never be cached.
	APIPathSegment string
	// DisabledHosts and PreviewHostSuffix turn the gateway into a plain
	// proxy on development and preview deployments.
	DisabledHosts     []string
	PreviewHostSuffix string
}

type Controller struct {
	store    *Store
	upstream *url.URL
	client   *http.Client
	opts     Options
}

func NewController(store *Store, upstream string, opts Options) (*Controller, error) {
	parsed, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}
	if opts.Version == "" {
		return nil, errors.New("cache version is required")
	}

	return &Controller{
		store:    store,
		upstream: parsed,
		client:   &http.Client{Timeout: 15 * time.Second},
		opts:     opts,
	}, nil
}

// Install precaches every manifest asset into the current version's cache.
// It does not wait for older caches to go away; Activate prunes them.
func (c *Controller) Install(ctx context.Context, manifest *Manifest) error {
	for _, asset := range manifest.Assets {
		response, err := c.fetchUpstream(ctx, asset)
		if err != nil {
			return fmt.Errorf("precache %s: %w", asset, err)
		}
		if response.Status != http.StatusOK {
			return fmt.Errorf("precache %s: upstream returned %d", asset, response.Status)
		}
		if err := c.store.Put(ctx, c.opts.Version, response); err != nil {
			return fmt.Errorf("precache %s: %w", asset, err)
		}
	}
	return nil
}

// Activate deletes every cache carrying the app prefix except the current
// version, then the gateway serves traffic immediately.
func (c *Controller) Activate(ctx context.Context) error {
	names, err := c.store.CacheNames(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if strings.HasPrefix(name, c.opts.NamePrefix) && name != c.opts.Version {
			if err := c.store.DeleteCache(ctx, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Controller) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if c.disabledFor(r.Host) {
		c.passthrough(w, r)
		return
	}

	if r.Method != http.MethodGet {
		c.passthrough(w, r)
		return
	}

	if isNavigation(r) {
		c.serveNavigation(w, r)
		return
	}
	c.serveAsset(w, r)
}

func (c *Controller) serveNavigation(w http.ResponseWriter, r *http.Request) {
	response, err := c.fetchUpstream(r.Context(), requestPath(r))
	if err == nil {
		writeResponse(w, response)
		return
	}

	fallback, matchErr := c.store.Match(r.Context(), c.opts.Version, c.opts.OfflinePage)
	if matchErr != nil {
		http.Error(w, "offline", http.StatusServiceUnavailable)
		return
	}
	writeResponse(w, fallback)
}

func (c *Controller) serveAsset(w http.ResponseWriter, r *http.Request) {
	path := requestPath(r)

	response, err := c.fetchUpstream(r.Context(), path)
	if err == nil {
		if response.Status == http.StatusOK && !strings.Contains(path, c.opts.APIPathSegment) {
			// Best effort: a failed put must not affect the response.
			if putErr := c.store.Put(r.Context(), c.opts.Version, response); putErr != nil {
				log.Printf("cache put %s: %v", path, putErr)
			}
		}
		writeResponse(w, response)
		return
	}

	cached, matchErr := c.store.Match(r.Context(), c.opts.Version, path)
	if matchErr != nil {
		http.Error(w, "upstream unreachable", http.StatusBadGateway)
		return
	}
	writeResponse(w, cached)
}

// passthrough proxies without touching the cache, used on disabled hosts
// and for non-GET methods.
func (c *Controller) passthrough(w http.ResponseWriter, r *http.Request) {
	target := *c.upstream
	target.Path = r.URL.Path
	target.RawQuery = r.URL.RawQuery

	request, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}
	request.Header = r.Header.Clone()

	response, err := c.client.Do(request)
	if err != nil {
		http.Error(w, "upstream unreachable", http.StatusBadGateway)
		return
	}
	defer response.Body.Close()

	copyHeader(w.Header(), response.Header)
	w.WriteHeader(response.StatusCode)
	_, _ = io.Copy(w, response.Body)
}

func (c *Controller) fetchUpstream(ctx context.Context, path string) (*CachedResponse, error) {
	target := *c.upstream
	if i := strings.IndexByte(path, '?'); i >= 0 {
		target.Path = path[:i]
		target.RawQuery = path[i+1:]
	} else {
		target.Path = path
		target.RawQuery = ""
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}

	response, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("fetch upstream: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	return &CachedResponse{
		URL:    path,
		Status: response.StatusCode,
		Header: response.Header.Clone(),
		Body:   body,
	}, nil
}

func (c *Controller) disabledFor(host string) bool {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}

	for _, disabled := range c.opts.DisabledHosts {
		if hostname == disabled {
			return true
		}
	}
	return c.opts.PreviewHostSuffix != "" && strings.HasSuffix(hostname, c.opts.PreviewHostSuffix)
}

func isNavigation(r *http.Request) bool {
	if r.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func requestPath(r *http.Request) string {
	if r.URL.RawQuery != "" {
		return r.URL.Path + "?" + r.URL.RawQuery
	}
	return r.URL.Path
}

func writeResponse(w http.ResponseWriter, response *CachedResponse) {
	copyHeader(w.Header(), response.Header)
	w.WriteHeader(response.Status)
	_, _ = w.Write(response.Body)
}

func copyHeader(dst, src http.Header) {
	for key, values := range src {
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
