// Package router assembles the HTTP surface: global middleware, public
// routes, and the session-guarded routes.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pingme/pingme/internal/handler"
	"github.com/pingme/pingme/internal/middleware"
	"github.com/pingme/pingme/internal/session"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger *slog.Logger

	SessionStore session.Store
	SessionCodec *session.Codec

	// Unauthorized is the guard's response policy for protected routes.
	// Defaults to a JSON 401 when nil.
	Unauthorized middleware.UnauthorizedPolicy

	CORSOrigins []string

	Base     *handler.Handler
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Password *handler.PasswordHandler
	Vehicle  *handler.VehicleHandler
	Payment  *handler.PaymentHandler
	Sticker  *handler.StickerHandler
}

// New builds the chi router.
func New(d Deps) *chi.Mux {
	r := chi.NewRouter()

	unauthorized := d.Unauthorized
	if unauthorized == nil {
		unauthorized = middleware.UnauthorizedJSON()
	}

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recoverer(d.Logger))
	if len(d.CORSOrigins) > 0 {
		r.Use(middleware.CORS(middleware.DefaultCORSConfig(d.CORSOrigins)))
	}
	r.Use(middleware.Session(middleware.SessionConfig{
		Logger: d.Logger,
		Store:  d.SessionStore,
		Codec:  d.SessionCodec,
	}))

	// Health endpoints
	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)

	// Public routes
	r.Get("/", d.Base.Home)
	r.Post("/signup", d.Auth.Signup)
	r.Post("/login", d.Auth.Login)
	r.Post("/forgot-password", d.Password.ForgotPassword)
	r.Post("/reset-password", d.Password.ResetPassword)
	r.Get("/check-session", d.Auth.CheckSession)

	// Routes requiring a logged-in session
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(unauthorized))

		r.Get("/logout", d.Auth.Logout)
		r.Post("/vehicle-details", d.Vehicle.Submit)
		r.Get("/vehicles", d.Vehicle.List)
		r.Post("/process-payment", d.Payment.Process)
		r.Get("/download-sticker", d.Sticker.Download)
	})

	// 404 and 405 handlers
	r.NotFound(d.Base.NotFound)
	r.MethodNotAllowed(d.Base.MethodNotAllowed)

	return r
}
