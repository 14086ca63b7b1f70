package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/birthday-heatmap/internal/config"
	"github.com/tartampluch/birthday-heatmap/internal/engine"
)

// cacheItem stores one rendered document and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// document is a single served route. Reads are lock-free; updates swap the
// whole item so a client never sees a half-written body.
type document struct {
	contentType string
	cache       atomic.Pointer[cacheItem]
}

// HeatmapServer serves the latest heatmap report and birthday calendar over HTTP.
type HeatmapServer struct {
	heatmap  document
	calendar document
	Port     string
}

// NewHeatmapServer creates a server bound to localhost on port once started.
func NewHeatmapServer(port string) *HeatmapServer {
	return &HeatmapServer{
		heatmap:  document{contentType: config.MimeJSON},
		calendar: document{contentType: config.MimeTextCalendar},
		Port:     port,
	}
}

// Handler returns the route table. It is exposed for tests and embedding.
func (s *HeatmapServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteHeatmap, s.heatmap.serve)
	mux.HandleFunc(config.RouteCalendar, s.calendar.serve)
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *HeatmapServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// UpdateHeatmap replaces the JSON report served on config.RouteHeatmap.
func (s *HeatmapServer) UpdateHeatmap(data []byte) {
	s.heatmap.update(config.RouteHeatmap, data)
}

// UpdateCalendar replaces the iCalendar feed served on config.RouteCalendar.
func (s *HeatmapServer) UpdateCalendar(data []byte) {
	s.calendar.update(config.RouteCalendar, data)
}

// Publish renders both documents for res and swaps them in.
// Nothing is replaced when either rendering fails.
func (s *HeatmapServer) Publish(gen *engine.Generator, res engine.Result) error {
	report, err := engine.MarshalReport(res)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrPublish, err)
	}
	ics, err := gen.EncodeCalendar(res.People)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrPublish, err)
	}
	s.UpdateHeatmap(report)
	s.UpdateCalendar(ics)
	return nil
}

func (d *document) update(route string, data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	d.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRoute, route,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// serve writes the cached document with conditional request support.
func (d *document) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := d.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, d.contentType)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}
