// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/relayhq/relay-go/internal/identity"
	"github.com/relayhq/relay-go/internal/middleware"
)

// Routes mounts all API v1 routes. rps/burst configure the per-user rate
// limit applied to authenticated traffic.
func (h *Handler) Routes(r chi.Router, resolver identity.Resolver, rps float64, burst int) {
	// Public endpoints (no authentication required)
	r.Get("/status", h.Status)

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(resolver))
		r.Use(middleware.UserRateLimit(rps, burst))

		// Employee surface
		r.Get("/feed", h.Feed)
		r.Get("/pages/{slug}", h.GetPage)
		r.Post("/pages/{id}/view", h.RecordView)
		r.Put("/pages/{id}/reaction", h.SetReaction)
		r.Delete("/pages/{id}/reaction", h.RemoveReaction)
		r.Get("/pages/{id}/comments", h.ListComments)
		r.Post("/pages/{id}/comments", h.AddComment)
		r.Get("/pages/{id}/validations", h.ListPageValidations)
		r.Post("/validations/{id}/response", h.SubmitResponse)

		// Staff surface (publishing roles)
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequirePublisher)

			r.Get("/dashboard", h.Dashboard)

			r.Get("/pages", h.ListPages)
			r.Post("/pages", h.CreatePage)
			r.Get("/pages/{id}", h.GetAdminPage)
			r.Put("/pages/{id}", h.UpdatePage)
			r.Delete("/pages/{id}", h.DeletePage)
			r.Post("/pages/{id}/publish", h.PublishPage)
			r.Get("/pages/{id}/publications", h.ListPublications)
			r.Get("/pages/{id}/stats", h.PageStats)
			r.Post("/pages/{id}/validations", h.CreateValidation)
			r.Delete("/validations/{id}", h.DeleteValidation)
			r.Get("/validations/{id}/summary", h.ValidationSummary)

			r.Get("/groups", h.ListGroups)
			r.Post("/groups", h.CreateGroup)
			r.Get("/groups/{id}", h.GetGroup)
			r.Put("/groups/{id}", h.UpdateGroup)
			r.Delete("/groups/{id}", h.DeleteGroup)
			r.Get("/groups/{id}/members", h.ListGroupMembers)
			r.Post("/groups/{id}/members", h.AddGroupMembers)
			r.Delete("/groups/{id}/members", h.RemoveGroupMembers)

			// Contact management is admin-only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff)
				r.Get("/contacts", h.ListContacts)
				r.Post("/contacts", h.CreateContact)
				r.Get("/contacts/{id}", h.GetContact)
				r.Put("/contacts/{id}", h.UpdateContact)
				r.Delete("/contacts/{id}", h.DeactivateContact)
			})
		})
	})
}
