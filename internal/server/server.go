// Package server serves the browser dashboard on a local address.
package server

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"StockLens/internal/dashboard"
	"StockLens/internal/dataset"
	"StockLens/internal/model"
	"StockLens/internal/render/static"
	"StockLens/internal/render/term"
)

//go:embed web/index.html
var indexHTML []byte

// Options configures the dashboard page and image rendering.
type Options struct {
	Title        string
	DefaultChart model.ChartType
	MultiSymbol  bool
	ShowTable    bool
	Chart        static.Options
}

// Server answers the page, JSON API, PNG and websocket requests from one
// shared dataset.
type Server struct {
	cache *dataset.Cache
	opts  Options
	hub   *hub
	md    goldmark.Markdown
}

// New creates a Server reading from cache.
func New(cache *dataset.Cache, opts Options) *Server {
	if opts.DefaultChart == "" {
		opts.DefaultChart = model.ChartLine
	}
	return &Server{
		cache: cache,
		opts:  opts,
		hub:   newHub(),
		md:    goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/symbols", s.handleSymbols)
	mux.HandleFunc("/api/chart", s.handleChart)
	mux.HandleFunc("/api/table", s.handleTable)
	mux.HandleFunc("/chart.png", s.handlePNG)
	mux.HandleFunc("/ws", s.serveWS)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] dashboard: http://%s", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.closeAll()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Println("[INFO] dashboard stopped")
	return nil
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode json response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// dataset returns the shared dataset or writes a 500.
func (s *Server) dataset(w http.ResponseWriter) (*dataset.Dataset, bool) {
	ds, err := s.cache.Get()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return ds, true
}

// selection reads category, symbol (repeatable or comma separated) and type
// from the query string and fills in dashboard defaults.
func (s *Server) selection(ds *dataset.Dataset, r *http.Request) (model.FilterSelection, error) {
	q := r.URL.Query()
	sel := model.FilterSelection{Category: strings.TrimSpace(q.Get("category"))}
	for _, v := range q["symbol"] {
		for _, sym := range strings.Split(v, ",") {
			if sym = strings.TrimSpace(sym); sym != "" {
				sel.Symbols = append(sel.Symbols, sym)
			}
		}
	}
	sel.ChartType = s.opts.DefaultChart
	if t := q.Get("type"); t != "" {
		ct, err := model.ParseChartType(t)
		if err != nil {
			return sel, err
		}
		sel.ChartType = ct
	}
	return s.normalize(ds, sel)
}

func (s *Server) normalize(ds *dataset.Dataset, sel model.FilterSelection) (model.FilterSelection, error) {
	if sel.ChartType == "" {
		sel.ChartType = s.opts.DefaultChart
	}
	if _, err := model.ParseChartType(string(sel.ChartType)); err != nil {
		return sel, err
	}
	if !s.opts.MultiSymbol && len(sel.Symbols) > 1 {
		return sel, fmt.Errorf("multiple symbols selected but multi_symbol is disabled")
	}
	return dashboard.Normalize(ds, sel), nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

type chartTypeInfo struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	types := make([]chartTypeInfo, len(model.ChartTypes))
	for i, ct := range model.ChartTypes {
		types[i] = chartTypeInfo{Value: string(ct), Label: ct.Label()}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":         s.opts.Title,
		"default_chart": s.opts.DefaultChart,
		"multi_symbol":  s.opts.MultiSymbol,
		"show_table":    s.opts.ShowTable,
		"chart_types":   types,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ds.Categories())
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w)
	if !ok {
		return
	}
	syms := ds.Symbols(r.URL.Query().Get("category"))
	if syms == nil {
		syms = []string{}
	}
	writeJSON(w, http.StatusOK, syms)
}

func (s *Server) view(w http.ResponseWriter, r *http.Request) (dashboard.View, bool) {
	ds, ok := s.dataset(w)
	if !ok {
		return dashboard.View{}, false
	}
	sel, err := s.selection(ds, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return dashboard.View{}, false
	}
	v, err := dashboard.Build(ds, sel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return dashboard.View{}, false
	}
	return v, true
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleTable returns the filtered rows as JSON, or as an HTML table when
// format=html.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("format") != "html" {
		writeJSON(w, http.StatusOK, v.Rows)
		return
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(term.Table(v.Rows)), &buf); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("render table: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	v, ok := s.view(w, r)
	if !ok {
		return
	}
	opts := s.opts.Chart
	opts.Title = chartTitle(v.Selection)
	var buf bytes.Buffer
	if err := static.Render(&buf, v.Chart, opts); err != nil {
		log.Printf("[ERROR] render png: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func chartTitle(sel model.FilterSelection) string {
	return fmt.Sprintf("%s  %s  (%s)", strings.Join(sel.Symbols, ", "), sel.ChartType.Label(), sel.Category)
}
