// Package web is the admin HTTP API: employee roster, attendance records,
// access logs, and anomaly alerts.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/tranvd/attendance-kiosk/internal/store"
)

// Server represents the admin web server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server

	employees store.EmployeeStore
	logs      store.AccessLogStore
	alerts    store.AlertStore
}

// NewServer creates a new admin web server.
func NewServer(host string, port int, employees store.EmployeeStore, logs store.AccessLogStore, alerts store.AlertStore) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:    r,
		employees: employees,
		logs:      logs,
		alerts:    alerts,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting admin web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down admin web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/employees", s.handleListEmployees)
		r.Get("/employees/{id}", s.handleGetEmployee)
		r.Get("/employees/{id}/logs", s.handleListAccessLogs)
		r.Get("/alerts", s.handleListAlerts)
	})
}
