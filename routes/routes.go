package routes

import (
	"eventra/accounts"
	"eventra/auth"
	"eventra/events"
	"eventra/globals"
	"eventra/gpt"
	"eventra/middleware"
	"eventra/packages"
	"eventra/ratelim"
	"eventra/tickets"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/eventpic/*filepath", http.Dir("static/eventpic"))
}

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/auth/register-eo", ratelim.RateLimit(auth.RegisterEO))
	router.POST("/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/auth/token/refresh", ratelim.RateLimit(auth.RefreshToken))
	router.POST("/auth/logout", middleware.Authenticate(auth.Logout))
	router.PUT("/auth/change-password", middleware.Authenticate(auth.ChangePassword))
}

func AddEventRoutes(router *httprouter.Router) {
	router.GET("/events", ratelim.RateLimit(events.GetEvents))
	router.GET("/events/:eventId", events.GetEvent)
	router.POST("/events", middleware.Authenticate(middleware.RequireRole(globals.RoleOrganizer, events.CreateEvent)))
	router.PUT("/events/:eventId", middleware.Authenticate(middleware.RequireRole(globals.RoleOrganizer, events.EditEvent)))
	router.DELETE("/events/:eventId", middleware.Authenticate(events.DeleteEvent))
	router.POST("/events/:eventId/categories", middleware.Authenticate(middleware.RequireRole(globals.RoleOrganizer, events.AddCategory)))
	router.PATCH("/events/:eventId/categories/:categoryName", middleware.Authenticate(middleware.RequireRole(globals.RoleOrganizer, events.UpdateCategory)))
}

func AddTicketRoutes(router *httprouter.Router) {
	router.POST("/events/:eventId/purchase-tickets",
		ratelim.RateLimit(middleware.Authenticate(middleware.RequireRole(globals.RoleCustomer, tickets.BuyTickets))))
	router.GET("/tickets", middleware.Authenticate(middleware.RequireRole(globals.RoleCustomer, tickets.GetTickets)))
	router.GET("/tickets/:ticketId", middleware.Authenticate(middleware.RequireRole(globals.RoleCustomer, tickets.GetTicket)))
}

func AddGPTRoutes(router *httprouter.Router) {
	router.POST("/generate-description",
		ratelim.RateLimit(middleware.Authenticate(middleware.RequireRole(globals.RoleOrganizer, gpt.GenerateDescription))))
}

func AddPackageRoutes(router *httprouter.Router) {
	router.POST("/packages", middleware.Authenticate(middleware.RequireRole(globals.RoleAdmin, packages.CreatePackage)))
	router.GET("/packages", middleware.Authenticate(middleware.RequireRole(globals.RoleOrganizer, packages.GetPackages)))
	router.DELETE("/packages/:packageId", middleware.Authenticate(middleware.RequireRole(globals.RoleAdmin, packages.DeletePackage)))

	router.POST("/purchases", middleware.Authenticate(middleware.RequireRole(globals.RoleOrganizer, packages.CreatePurchase)))
	router.GET("/purchases", middleware.Authenticate(middleware.RequireRole(globals.RoleOrganizer, packages.GetPurchases)))
}

func AddAccountRoutes(router *httprouter.Router) {
	router.GET("/profile", middleware.Authenticate(accounts.GetProfile))
	router.PUT("/profile/customer", middleware.Authenticate(middleware.RequireRole(globals.RoleCustomer, accounts.UpdateCustomer)))
	router.PUT("/profile/eo", middleware.Authenticate(middleware.RequireRole(globals.RoleOrganizer, accounts.UpdateEO)))

	router.GET("/users/:userId", middleware.Authenticate(accounts.GetUser))
	router.GET("/organizers/:userId", middleware.Authenticate(accounts.GetOrganizer))

	router.GET("/admin/accounts", middleware.Authenticate(middleware.RequireRole(globals.RoleAdmin, accounts.ViewAccounts)))
	router.DELETE("/admin/accounts/:accountId", middleware.Authenticate(middleware.RequireRole(globals.RoleAdmin, accounts.DeleteAccount)))
}
