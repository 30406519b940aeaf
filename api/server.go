/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/scan, /api/manual   Check-in submission
  /api/attendance/*        Record lookup and verification
  /api/activities/*        Activity management
  /api/persons/*           Student/tutor management
  /api/settings/*          Payment setting management
  /api/honor/*             Honor preview, finalize, records
  /api/scenarios/*         Demo scenarios
  /api/reset               Database reset (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Check-in routes
		r.Post("/scan", h.Scan)
		r.Post("/manual", h.ManualEntry)

		// Attendance record routes
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/{id}", h.GetRecord)
			r.Post("/{id}/verify", h.VerifyRecord)
			r.Post("/{id}/reject", h.RejectRecord)
		})

		// Activity routes
		r.Route("/activities", func(r chi.Router) {
			r.Get("/", h.ListActivities)
			r.Post("/", h.CreateActivity)
			r.Get("/{id}", h.GetActivity)
			r.Get("/{id}/attendance", h.ListActivityAttendance)
		})

		// Person routes
		r.Route("/persons", func(r chi.Router) {
			r.Get("/", h.ListPersons)
			r.Post("/", h.CreatePerson)
		})

		// Payment setting routes
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.ListSettings)
			r.Post("/", h.CreateSetting)
			r.Get("/active", h.GetActiveSetting)
			r.Post("/{id}/activate", h.ActivateSetting)
		})
		r.Get("/systems", h.ListSystems)

		// Honor routes
		r.Route("/honor", func(r chi.Router) {
			r.Post("/preview", h.PreviewHonor)
			r.Post("/finalize", h.FinalizeHonor)
			r.Get("/records", h.ListHonorRecords)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	// Landing page: endpoint index for anyone hitting the root.
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Attendance Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Attendance Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/activities">/api/activities</a> - List activities</li>
<li><a href="/api/persons">/api/persons</a> - List students and tutors</li>
<li><a href="/api/settings">/api/settings</a> - List payment settings</li>
<li><a href="/api/systems">/api/systems</a> - Payment system metadata</li>
<li><a href="/api/honor/records">/api/honor/records</a> - Finalized honor records</li>
<li><a href="/api/scenarios">/api/scenarios</a> - List demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
