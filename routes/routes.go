package routes

import (
	"carenest/admin"
	"carenest/bookings"
	"carenest/middleware"
	"carenest/ratelim"
	"carenest/services"
	"carenest/users"

	"github.com/julienschmidt/httprouter"
)

func AddServiceRoutes(router *httprouter.Router, h *services.Handler, rl *ratelim.RateLimiter) {
	router.GET("/services", h.List)
	router.GET("/services/:id", h.Get)
	router.POST("/services", rl.Limit(h.Create))
	router.PUT("/services/:id", rl.Limit(h.Update))
	router.DELETE("/services/:id", rl.Limit(h.Delete))
}

func AddUserRoutes(router *httprouter.Router, h *users.Handler, rl *ratelim.RateLimiter) {
	router.POST("/users", rl.Limit(h.Create))
	router.GET("/users/:email", h.Get)
	router.PUT("/users/:email", rl.Limit(h.Update))
}

func AddBookingRoutes(router *httprouter.Router, h *bookings.Handler, rl *ratelim.RateLimiter) {
	router.POST("/bookings", rl.Limit(h.Create))
	router.GET("/bookings", h.ListByUser)
	router.GET("/bookings/:id", h.Get)
	router.PATCH("/bookings/:id", rl.Limit(h.UpdateStatus))
	router.DELETE("/bookings/:id", rl.Limit(h.Delete))
}

// AddAdminRoutes wires the admin surface. Everything except the admin check
// sits behind the directory-backed role guard.
func AddAdminRoutes(router *httprouter.Router, h *admin.Handler, users middleware.UserGetter) {
	router.GET("/admin/check/:email", h.CheckAdmin)
	router.GET("/admin/stats", middleware.AdminOnly(users, h.Stats))
	router.GET("/admin/bookings", middleware.AdminOnly(users, h.ListBookings))
	router.GET("/admin/users", middleware.AdminOnly(users, h.ListUsers))
	router.PATCH("/admin/users/:email/role", middleware.AdminOnly(users, h.UpdateRole))
}
