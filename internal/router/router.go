package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-repair-shop/internal/config"
	"go-repair-shop/internal/handler"
	"go-repair-shop/internal/middleware"
	"go-repair-shop/internal/model"
)

type Handlers struct {
	Auth           *handler.AuthHandler
	Clients        *handler.ResourceHandler[model.Client, model.ClientInput, model.ClientInput]
	ClientVehicles *handler.ClientVehiclesHandler
	Vehicles       *handler.ResourceHandler[model.Vehicle, model.VehicleInput, model.VehicleInput]
	WorkOrders     *handler.ResourceHandler[model.WorkOrder, model.WorkOrderInput, model.WorkOrderInput]
	Users          *handler.ResourceHandler[model.User, model.CreateUserRequest, model.UpdateUserRequest]
	Events         http.Handler
	Health         http.HandlerFunc
}

type crud interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

func mountCRUD(r chi.Router, h crud, deleteMW ...func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.With(deleteMW...).Delete("/{id}", h.Delete)
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)
	adminOnly := authMiddleware.RequireRoles(model.RoleAdmin)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health)

	// the websocket stream must stay outside the buffering timeout handler
	if h.Events != nil {
		r.With(authMiddleware.RequireAuth).Get("/ws", h.Events.ServeHTTP)
	}

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.Post("/refresh", h.Auth.Refresh)
			auth.Post("/logout", h.Auth.Logout)
			auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
			auth.With(authMiddleware.RequireAuth).Post("/verify", h.Auth.Verify)
		})

		api.Group(func(private chi.Router) {
			private.Use(authMiddleware.RequireAuth)

			private.Route("/clients", func(clients chi.Router) {
				mountCRUD(clients, h.Clients, adminOnly)
				clients.Get("/{id}/vehicles", h.ClientVehicles.List)
				clients.Post("/{id}/vehicles", h.ClientVehicles.Create)
				clients.Delete("/{id}/vehicles/{vehicle_id}", h.ClientVehicles.Delete)
			})
			private.Route("/vehicles", func(vehicles chi.Router) {
				mountCRUD(vehicles, h.Vehicles)
			})
			private.Route("/work-orders", func(orders chi.Router) {
				mountCRUD(orders, h.WorkOrders)
			})
			private.Route("/users", func(users chi.Router) {
				users.Use(adminOnly)
				mountCRUD(users, h.Users)
			})
		})
	})

	return r
}
