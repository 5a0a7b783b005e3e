// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// shellAssets is the fixed app-shell path list served cache-first. This
// mirrors the asset list the hosted app's offline worker precaches.
var shellAssets = []string{
	"/",
	"/index.html",
	"/manifest.json",
	"/icon.svg",
}

// maxAssetSize caps one cached response body.
const maxAssetSize = 20 * 1024 * 1024 // 20MB

// upstreamTimeout bounds one proxied fetch.
const upstreamTimeout = 15 * time.Second

// =============================================================================
// GATEWAY
// =============================================================================

// Gateway proxies the hosted app shell with the offline worker's caching
// policy.
type Gateway struct {
	upstream   string
	cache      *assetCache
	httpClient *http.Client
	shell      map[string]bool
}

// New creates a gateway proxying the given upstream origin.
func New(upstream string) *Gateway {
	shell := make(map[string]bool, len(shellAssets))
	for _, p := range shellAssets {
		shell[p] = true
	}
	return &Gateway{
		upstream:   strings.TrimRight(upstream, "/"),
		cache:      newAssetCache(),
		httpClient: &http.Client{Timeout: upstreamTimeout},
		shell:      shell,
	}
}

// Handler returns the gateway's HTTP handler with middleware applied.
func (g *Gateway) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		LoggingMiddleware(),
		ThrottleMiddleware(newThrottle()),
	)(http.HandlerFunc(g.serve))
}

// ListenAndServe runs the gateway until ctx is cancelled.
func (g *Gateway) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[gateway] serving app shell from %s on %s", g.upstream, addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// serve dispatches one request per the caching policy.
func (g *Gateway) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if g.shell[r.URL.Path] {
		g.serveCacheFirst(w, r.URL.Path)
		return
	}
	g.serveNetworkFirst(w, r.URL.Path)
}

// serveCacheFirst answers from cache when possible and refreshes in the
// background; a miss falls through to a blocking fetch.
func (g *Gateway) serveCacheFirst(w http.ResponseWriter, path string) {
	if asset, ok := g.cache.Get(path); ok {
		writeAsset(w, asset)
		go g.refresh(path)
		return
	}

	asset, err := g.fetch(path)
	if err != nil {
		log.Printf("[gateway] shell fetch failed: %s: %v", path, err)
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
		return
	}
	g.cache.Put(path, asset.Body, asset.ContentType)
	writeAsset(w, asset)
}

// serveNetworkFirst tries the upstream and falls back to the cache when
// it is unreachable.
func (g *Gateway) serveNetworkFirst(w http.ResponseWriter, path string) {
	asset, err := g.fetch(path)
	if err == nil {
		g.cache.Put(path, asset.Body, asset.ContentType)
		writeAsset(w, asset)
		return
	}

	if cached, ok := g.cache.Get(path); ok {
		log.Printf("[gateway] upstream unreachable, serving cached: %s", path)
		writeAsset(w, cached)
		return
	}
	http.Error(w, "Bad Gateway", http.StatusBadGateway)
}

// refresh re-fetches one shell asset into the cache.
func (g *Gateway) refresh(path string) {
	asset, err := g.fetch(path)
	if err != nil {
		log.Printf("[gateway] background refresh failed: %s: %v", path, err)
		return
	}
	g.cache.Put(path, asset.Body, asset.ContentType)
}

// fetch retrieves one path from the upstream.
func (g *Gateway) fetch(path string) (cachedAsset, error) {
	resp, err := g.httpClient.Get(g.upstream + path)
	if err != nil {
		return cachedAsset{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return cachedAsset{}, &upstreamError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize))
	if err != nil {
		return cachedAsset{}, err
	}
	return cachedAsset{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FetchedAt:   time.Now(),
	}, nil
}

// writeAsset writes one asset response.
func writeAsset(w http.ResponseWriter, asset cachedAsset) {
	if asset.ContentType != "" {
		w.Header().Set("Content-Type", asset.ContentType)
	}
	w.WriteHeader(http.StatusOK)
	w.Write(asset.Body)
}

// upstreamError is a non-200 upstream answer.
type upstreamError struct {
	status int
}

func (e *upstreamError) Error() string {
	return "upstream returned " + http.StatusText(e.status)
}
