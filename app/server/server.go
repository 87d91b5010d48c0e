// Package server exposes the dashboard over HTTP. Queries are served from
// an in-memory engine built once per dataset load; while a load is in
// flight the API answers 503 rather than blocking, and a failed load is
// reported as an explicit error payload until the next reload succeeds.
package server

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/git-galluppakistan/survey-dashboard/app/cache"
	"github.com/git-galluppakistan/survey-dashboard/app/config"
	"github.com/git-galluppakistan/survey-dashboard/app/engine"
	"github.com/git-galluppakistan/survey-dashboard/app/fileloader"
	"github.com/git-galluppakistan/survey-dashboard/app/loader"
)

// Server owns the HTTP surface and the currently loaded dataset.
type Server struct {
	echo  *echo.Echo
	cache *cache.Cache
	cfg   *config.Config

	mu       sync.RWMutex
	engine   *engine.Engine
	dataset  *cache.DatasetEntry
	warnings []string
	loadErr  error
	loading  bool
}

// New builds a server with routes and middleware registered. No data is
// loaded yet; call Reload (or Start, which triggers one) first.
func New(cfg *config.Config, c *cache.Cache) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	s := &Server{echo: e, cache: c, cfg: cfg, loading: true}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.echo.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/summary", s.handleSummary)
	api.GET("/facets", s.handleFacets)
	api.GET("/questions", s.handleQuestions)
	api.GET("/question", s.handleQuestion)
	api.GET("/breakdown", s.handleBreakdown)
	api.GET("/highlight", s.handleHighlight)
	api.GET("/districts/top", s.handleTopDistricts)
	api.GET("/cache/stats", s.handleCacheStats)
	api.POST("/reload", s.handleReload)
}

// Start kicks off the initial dataset load in the background and serves
// HTTP until Shutdown.
func (s *Server) Start() error {
	go s.Reload(context.Background())
	log.Printf("[SERVER] Listening on %s", s.cfg.ListenAddr)
	err := s.echo.Start(s.cfg.ListenAddr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Reload loads (or revalidates) the dataset and atomically swaps it in.
// Queries keep hitting the previous dataset until the swap; only the final
// assignment takes the write lock.
func (s *Server) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	// Resolve before the cache lookup: a new higher-priority export next to
	// a cached one must change the key, not hide behind it.
	sourcePath, err := fileloader.ResolveSourceFile(s.cfg.DataDir, s.cfg.SourceCandidates)
	if err != nil {
		log.Printf("[SERVER] Dataset load failed: %v", err)
		s.mu.Lock()
		s.loading = false
		s.loadErr = err
		s.mu.Unlock()
		return err
	}
	codebookPath := s.cfg.ResolvedCodebookPath()

	key := cache.DatasetKey(sourcePath, codebookPath)
	entry, ok := s.cache.GetDataset(key)
	var warnings []string

	if !ok {
		result, err := loader.Load(ctx, loader.Options{
			DataDir:          s.cfg.DataDir,
			SourceCandidates: s.cfg.SourceCandidates,
			CodebookPath:     codebookPath,
			BatchRows:        s.cfg.BatchRows,
		})
		if err != nil {
			log.Printf("[SERVER] Dataset load failed: %v", err)
			s.mu.Lock()
			s.loading = false
			s.loadErr = err
			s.mu.Unlock()
			return err
		}
		entry = s.cache.StoreDataset(key, cache.DatasetEntry{
			Table:        result.Table,
			SourcePath:   result.SourcePath,
			CodebookPath: result.CodebookPath,
		}, result.SourcePath, result.CodebookPath)
		warnings = result.Warnings
	}

	eng := engine.New(entry.Table)

	s.mu.Lock()
	s.engine = eng
	s.dataset = entry
	s.warnings = warnings
	s.loadErr = nil
	s.loading = false
	s.mu.Unlock()

	log.Printf("[SERVER] Dataset ready: %s (%d rows)", entry.SourcePath, entry.Table.RowCount())
	return nil
}

// currentEngine returns the live engine and dataset, or an HTTP error
// reflecting the load state.
func (s *Server) currentEngine() (*engine.Engine, *cache.DatasetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.loading {
		return nil, nil, echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is loading")
	}
	if s.loadErr != nil {
		return nil, nil, echo.NewHTTPError(http.StatusInternalServerError, s.loadErr.Error())
	}
	if s.engine == nil {
		return nil, nil, echo.NewHTTPError(http.StatusServiceUnavailable, "no dataset loaded")
	}
	return s.engine, s.dataset, nil
}
