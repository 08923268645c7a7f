package routes

import (
	"github.com/AnshRaj112/catchlog-backend/internal/handlers"
	"github.com/AnshRaj112/catchlog-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r chi.Router, h *handlers.Handler) {
	// Health check (no auth)
	r.Get("/health", h.Health)

	// Auth routes
	r.Post("/api/auth/signup", h.Signup)
	r.Post("/api/auth/signin", h.Signin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.Sessions))

		r.Get("/api/auth/me", h.Me)
		r.Post("/api/auth/signout", h.Signout)

		// Spots
		r.Get("/api/spots", h.ListSpots)
		r.Post("/api/spots", h.CreateSpot)
		r.Put("/api/spots", h.UpdateSpot)
		r.Get("/api/spots/{id}", h.GetSpot)
		r.Delete("/api/spots/{id}", h.DeleteSpot)
		r.Get("/api/spots/{id}/conditions", h.SpotConditions)
		r.Get("/api/spots/{id}/alternatives", h.SpotAlternatives)

		// Catches
		r.Get("/api/catches", h.ListCatches)
		r.Post("/api/catches", h.CreateCatch)
		r.Put("/api/catches", h.UpdateCatch)
		r.Delete("/api/catches/{id}", h.DeleteCatch)

		// Favorites
		r.Get("/api/favorites", h.ListFavorites)
		r.Post("/api/favorites", h.AddFavorite)
		r.Delete("/api/favorites/{spotID}", h.RemoveFavorite)

		// Fish types
		r.Get("/api/fish-types", h.FishTypes)
		r.Get("/api/fish-types/custom", h.ListCustomFishTypes)
		r.Post("/api/fish-types/custom", h.CreateCustomFishType)

		// Profile
		r.Get("/api/profile", h.GetProfile)
		r.Put("/api/profile", h.SaveProfile)

		// Sync
		r.Get("/api/sync", h.SyncStatus)
		r.Put("/api/sync", h.SetSync)
		r.Post("/api/sync/push", h.Push)
		r.Post("/api/sync/pull", h.Pull)
		r.Post("/api/sync/drain", h.Drain)

		// Community feed (Postgres catches + MongoDB interactions)
		r.Get("/api/feed", h.ListFeed)
		r.Post("/api/catches/{id}/like", h.LikeCatch)
		r.Delete("/api/catches/{id}/like", h.UnlikeCatch)
		r.Get("/api/catches/{id}/comments", h.ListComments)
		r.With(middleware.CommentRateLimit).Post("/api/catches/{id}/comments", h.AddComment)

		// Geocoding
		r.Get("/api/geocode", h.Geocode)
		r.Get("/api/geocode/reverse", h.ReverseGeocode)

		// File upload routes
		r.Post("/api/upload", h.Upload)
		r.Post("/api/upload/presign", h.Presign)

		// WebSocket endpoint for the realtime feed
		r.Get("/ws/feed", h.FeedWebSocket)
	})
}
