package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/git-galluppakistan/survey-dashboard/app/cache"
	"github.com/git-galluppakistan/survey-dashboard/app/engine"
)

func (s *Server) handleHealth(c echo.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := "ready"
	switch {
	case s.loading:
		status = "loading"
	case s.loadErr != nil:
		status = "error"
	}
	body := map[string]any{"status": status}
	if s.loadErr != nil {
		body["error"] = s.loadErr.Error()
	}
	if s.dataset != nil {
		body["dataset"] = s.dataset.ID
		body["source"] = s.dataset.SourcePath
	}
	if len(s.warnings) > 0 {
		body["warnings"] = s.warnings
	}
	return c.JSON(http.StatusOK, body)
}

func (s *Server) handleSummary(c echo.Context) error {
	eng, _, err := s.currentEngine()
	if err != nil {
		return err
	}
	sel, err := parseSelection(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, eng.Summary(sel))
}

func (s *Server) handleFacets(c echo.Context) error {
	eng, _, err := s.currentEngine()
	if err != nil {
		return err
	}
	sel, err := parseSelection(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"facets": eng.FacetOptions(sel)})
}

func (s *Server) handleQuestions(c echo.Context) error {
	eng, _, err := s.currentEngine()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"questions": eng.Questions()})
}

func (s *Server) handleQuestion(c echo.Context) error {
	eng, dataset, err := s.currentEngine()
	if err != nil {
		return err
	}
	column := c.QueryParam("column")
	if column == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "column parameter is required")
	}
	sel, err := parseSelection(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	params := selectionParams(sel)
	params["column"] = column
	key := cache.QueryKey(dataset.ID, "question", params)
	if payload, ok := s.cache.GetQuery(key); ok {
		return c.JSONBlob(http.StatusOK, payload)
	}

	stats, err := eng.QuestionStats(column, sel)
	if errors.Is(err, engine.ErrUnknownColumn) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	return s.respondCached(c, key, stats)
}

func (s *Server) handleBreakdown(c echo.Context) error {
	eng, dataset, err := s.currentEngine()
	if err != nil {
		return err
	}
	column := c.QueryParam("column")
	if column == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "column parameter is required")
	}
	dimension := c.QueryParam("dimension")
	if dimension == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "dimension parameter is required")
	}
	sel, err := parseSelection(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	params := selectionParams(sel)
	params["column"] = column
	params["dimension"] = dimension
	key := cache.QueryKey(dataset.ID, "breakdown", params)
	if payload, ok := s.cache.GetQuery(key); ok {
		return c.JSONBlob(http.StatusOK, payload)
	}

	breakdown, err := eng.Breakdown(column, dimension, sel)
	if errors.Is(err, engine.ErrUnknownColumn) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if errors.Is(err, engine.ErrUnknownDimension) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}
	return s.respondCached(c, key, breakdown)
}

func (s *Server) handleHighlight(c echo.Context) error {
	eng, dataset, err := s.currentEngine()
	if err != nil {
		return err
	}
	column := c.QueryParam("column")
	if column == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "column parameter is required")
	}
	dimension := c.QueryParam("dimension")
	if dimension == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "dimension parameter is required")
	}
	sel, err := parseSelection(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	params := selectionParams(sel)
	params["column"] = column
	params["dimension"] = dimension
	key := cache.QueryKey(dataset.ID, "highlight", params)
	if payload, ok := s.cache.GetQuery(key); ok {
		return c.JSONBlob(http.StatusOK, payload)
	}

	view, err := eng.Highlight(column, dimension, sel)
	if errors.Is(err, engine.ErrUnknownColumn) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if errors.Is(err, engine.ErrUnknownDimension) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return err
	}
	return s.respondCached(c, key, view)
}

func (s *Server) handleTopDistricts(c echo.Context) error {
	eng, dataset, err := s.currentEngine()
	if err != nil {
		return err
	}
	sel, err := parseSelection(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	key := cache.QueryKey(dataset.ID, "topdistricts", selectionParams(sel))
	if payload, ok := s.cache.GetQuery(key); ok {
		return c.JSONBlob(http.StatusOK, payload)
	}

	districts := eng.TopDistricts(sel, 10)
	if districts == nil {
		districts = []engine.AnswerCount{}
	}
	return s.respondCached(c, key, map[string]any{"districts": districts})
}

func (s *Server) handleCacheStats(c echo.Context) error {
	stats := s.cache.GetStats()
	return c.JSON(http.StatusOK, map[string]any{
		"query_entries":   stats.QueryEntries,
		"dataset_entries": stats.DatasetEntries,
		"total_size":      stats.TotalSize,
		"max_size":        stats.MaxSize,
		"usage_percent":   stats.UsagePercent,
		"query_hits":      stats.QueryHits,
		"dataset_hits":    stats.DatasetHits,
		"misses":          stats.Misses,
		"hit_rate":        stats.HitRate,
	})
}

func (s *Server) handleReload(c echo.Context) error {
	if err := s.Reload(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": err.Error()})
	}
	return s.handleHealth(c)
}

// respondCached marshals a response once, caches the payload, and writes
// it out.
func (s *Server) respondCached(c echo.Context, key string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	s.cache.StoreQuery(key, payload)
	return c.JSONBlob(http.StatusOK, payload)
}
