// Package statusserver serves a small operational HTTP surface (/health,
// /progress) alongside a pipeline run, grounded on the fiber app + route
// registration style of internal/api/handlers.go in the teacher repo.
// It is optional: SPEC_FULL.md §4.1 treats it as an observability
// side-channel, never required for a run to succeed.
package statusserver

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Progress tracks counters the pipeline updates as it runs; handlers read
// them without locking via atomic loads.
type Progress struct {
	routesTotal int64
	routesDone  int64
	nodes       int64
	links       int64
	started     time.Time
}

// New creates a Progress tracker, stamping the start time.
func New() *Progress {
	return &Progress{started: time.Now()}
}

func (p *Progress) SetRoutesTotal(n int64)  { atomic.StoreInt64(&p.routesTotal, n) }
func (p *Progress) IncRoutesDone()          { atomic.AddInt64(&p.routesDone, 1) }
func (p *Progress) AddNodes(n int64)        { atomic.AddInt64(&p.nodes, n) }
func (p *Progress) AddLinks(n int64)        { atomic.AddInt64(&p.links, n) }

// Server wraps a fiber app exposing /health and /progress.
type Server struct {
	app *fiber.App
}

// Start launches the status server in the background and returns
// immediately; Shutdown stops it. Listen errors are reported via errc.
func Start(addr string, progress *Progress) (*Server, <-chan error) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/progress", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"routes_total": atomic.LoadInt64(&progress.routesTotal),
			"routes_done":  atomic.LoadInt64(&progress.routesDone),
			"nodes":        atomic.LoadInt64(&progress.nodes),
			"links":        atomic.LoadInt64(&progress.links),
			"elapsed_s":    time.Since(progress.started).Seconds(),
		})
	})

	errc := make(chan error, 1)
	go func() { errc <- app.Listen(addr) }()
	return &Server{app: app}, errc
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
