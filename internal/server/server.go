// Package server hosts the preview server: the generated site served as-is
// plus a small JSON API over the loaded datasets.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/dataset"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/errors"
	"github.com/ObservaLosRios/sellos-apl-por-corfo/internal/site"
)

// Options configure the preview server
type Options struct {
	// SiteDir is the generated output directory to serve
	SiteDir string
	// GinMode selects the gin mode, release unless debugging
	GinMode string
	// ShutdownTimeout bounds the drain once the context ends
	ShutdownTimeout time.Duration
}

// Server serves a generated site and the dataset API
type Server struct {
	router *gin.Engine
	bundle *dataset.Bundle
	opts   Options

	// Manifest cache, refreshed when a rebuild touches manifest.json
	manifestMu  sync.RWMutex
	manifest    *site.Manifest
	manifestMod time.Time

	startedAt time.Time
}

// NewServer wires the routes for the bundle and generated site
func NewServer(bundle *dataset.Bundle, opts Options) *Server {
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}
	s := &Server{
		router:    gin.Default(),
		bundle:    bundle,
		opts:      opts,
		startedAt: time.Now(),
	}
	s.setupRoutes()
	return s
}

// Router exposes the handler, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	dir := s.opts.SiteDir
	s.router.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(dir, "index.html"))
	})
	s.router.StaticFile("/index.html", filepath.Join(dir, "index.html"))
	s.router.StaticFile("/acerca.html", filepath.Join(dir, "acerca.html"))
	s.router.StaticFile("/manifest.json", filepath.Join(dir, "manifest.json"))
	s.router.Static("/assets", filepath.Join(dir, "assets"))
	s.router.Static("/datasets", filepath.Join(dir, "datasets"))

	api := s.router.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/datasets", s.handleDatasets)
	api.GET("/datasets/:name", s.handleDataset)
}

// Run serves until the context is cancelled, then drains open connections
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{Addr: addr, Handler: s.router}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("[Server] Preview listening on %s, serving %s", addr, s.opts.SiteDir)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Printf("[Server] Shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleStatus(c *gin.Context) {
	status := gin.H{
		"status":   "ok",
		"source":   s.bundle.Source,
		"datasets": len(s.bundle.All()),
		"uptime":   time.Since(s.startedAt).Round(time.Second).String(),
	}
	if manifest := s.currentManifest(); manifest != nil {
		status["site_built"] = true
		status["build_id"] = manifest.BuildID
		status["generated_at"] = manifest.GeneratedAt
		status["sections"] = len(manifest.Sections)
	} else {
		status["site_built"] = false
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleDatasets(c *gin.Context) {
	all := s.bundle.All()
	items := make([]gin.H, 0, len(all))
	for _, ds := range all {
		items = append(items, gin.H{
			"name":    ds.Spec.Name,
			"title":   ds.Spec.Title,
			"rows":    ds.Len(),
			"columns": ds.Spec.ColumnNames(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"source":   s.bundle.Source,
		"datasets": items,
	})
}

func (s *Server) handleDataset(c *gin.Context) {
	name := c.Param("name")
	ds := s.bundle.Get(name)
	if ds == nil {
		missing := errors.DatasetMissing(name)
		c.JSON(http.StatusNotFound, gin.H{
			"error": missing.Message,
			"code":  missing.Code,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":    ds.Spec.Name,
		"title":   ds.Spec.Title,
		"columns": ds.Spec.ColumnNames(),
		"rows":    ds.Records(),
	})
}

// currentManifest returns the manifest of the served site, re-reading it
// after a rebuild changes the file. A missing or unreadable manifest is not
// an error, the site may simply not be generated yet.
func (s *Server) currentManifest() *site.Manifest {
	path := filepath.Join(s.opts.SiteDir, "manifest.json")
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}

	s.manifestMu.RLock()
	if s.manifest != nil && info.ModTime().Equal(s.manifestMod) {
		cached := s.manifest
		s.manifestMu.RUnlock()
		return cached
	}
	s.manifestMu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var manifest site.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Printf("[Server] Ignoring invalid manifest at %s: %v", path, err)
		return nil
	}

	s.manifestMu.Lock()
	s.manifest = &manifest
	s.manifestMod = info.ModTime()
	s.manifestMu.Unlock()
	return &manifest
}
