// Package router registers the HTTP routes and their middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/spacelink/internal/handler"
	"github.com/iliyamo/spacelink/internal/middleware"
	"github.com/iliyamo/spacelink/internal/model"
)

// Handlers groups everything RegisterRoutes wires up.
type Handlers struct {
	Auth          *handler.AuthHandler
	Bookings      *handler.BookingHandler
	Properties    *handler.PropertyHandler
	Notifications *handler.NotificationHandler
	Health        echo.HandlerFunc
}

// Options carries the shared middleware.  Cache, CacheEvict and RateLimit
// may be nil.  CacheEvict runs after property writes that change public
// listings.
type Options struct {
	JWTSecret  string
	Cache      echo.MiddlewareFunc
	CacheEvict echo.MiddlewareFunc
	RateLimit  echo.MiddlewareFunc
}

func RegisterRoutes(e *echo.Echo, h Handlers, opt Options) {
	if h.Health != nil {
		e.GET("/healthz", h.Health)
	}

	v1 := e.Group("/v1")
	if opt.RateLimit != nil {
		v1.Use(opt.RateLimit)
	}
	requireAuth := middleware.JWTAuth(opt.JWTSecret)
	anyRole := middleware.RequireRole(model.RoleUser, model.RoleAdmin)

	// Session endpoints do not need an access token.
	a := v1.Group("/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/refresh", h.Auth.Refresh)
	a.POST("/logout", h.Auth.Logout)

	me := v1.Group("/me", requireAuth, anyRole)
	me.GET("", h.Auth.Me)
	me.GET("/profile", h.Auth.Me)
	me.PUT("/profile", h.Auth.UpdateProfile)

	// Public browse.  Responses are cached when Redis is available.
	public := v1.Group("/properties")
	if opt.Cache != nil {
		public.GET("", h.Properties.List, opt.Cache)
		public.GET("/:id", h.Properties.Get, opt.Cache)
	} else {
		public.GET("", h.Properties.List)
		public.GET("/:id", h.Properties.Get)
	}
	evict := func(mw ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		if opt.CacheEvict != nil {
			mw = append(mw, opt.CacheEvict)
		}
		return mw
	}
	v1.POST("/properties", h.Properties.Create, evict(requireAuth, anyRole)...)
	v1.GET("/my-properties", h.Properties.Mine, requireAuth, anyRole)

	admin := v1.Group("/admin", requireAuth, middleware.RequireRole(model.RoleAdmin))
	admin.PATCH("/properties/:id/disable", h.Properties.Disable, evict()...)
	admin.PATCH("/properties/:id/enable", h.Properties.Enable, evict()...)

	// Availability is a pure read and open to guests.
	v1.POST("/bookings/check-availability", h.Bookings.CheckAvailability)

	b := v1.Group("/bookings", requireAuth, anyRole)
	b.POST("", h.Bookings.Create)
	b.GET("/my-bookings", h.Bookings.MyBookings)
	b.GET("/owner", h.Bookings.OwnerBookings)
	b.GET("/:id", h.Bookings.Get)
	b.PATCH("/:id/approve", h.Bookings.Approve)
	b.PATCH("/:id/reject", h.Bookings.Reject)
	b.PATCH("/:id/activate", h.Bookings.Activate)
	b.PATCH("/:id/end", h.Bookings.End)
	b.PATCH("/:id/cancel", h.Bookings.Cancel)

	n := v1.Group("/notifications", requireAuth, anyRole)
	n.GET("", h.Notifications.List)
	n.PATCH("/:id/read", h.Notifications.MarkRead)
}
