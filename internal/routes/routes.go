package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/lpielikys/pokedextracker-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Collection routes
	r.Get("/api/userdex", handlers.GetUserdex)
	r.Put("/api/userdex", handlers.UpsertUserdex)
	r.Delete("/api/userdex", handlers.DeleteUserdex)

	// Sharing routes
	r.Post("/api/userdex/share", handlers.EnableShare)
	r.Post("/api/userdex/unshare", handlers.DisableShare)
	r.Get("/api/userdex/shared/{shareId}", handlers.GetSharedView)

	// Screenshot upload routes
	r.Post("/api/media", handlers.UploadMedia)
	r.Delete("/api/media", handlers.DeleteMedia)

	// Search routes
	r.Get("/api/search", handlers.Search)

	// Pokedex catalog routes
	r.Get("/api/pokedex", handlers.GetPokedex)

	// Comment routes
	r.Post("/api/comments", handlers.CreateComment)
	r.Get("/api/comments", handlers.GetComments)

	// Admin routes
	r.Post("/api/admin/users", handlers.AdminUsers)
	r.Post("/api/admin/media", handlers.AdminMedia)
	r.Post("/api/admin/auditlog", handlers.AuditLog)

	// WebSocket endpoint for realtime collection events
	r.Get("/ws/events", handlers.EventsWebSocket)
}
