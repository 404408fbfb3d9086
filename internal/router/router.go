package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-employee-api/internal/config"
	"go-employee-api/internal/handler"
	"go-employee-api/internal/middleware"
	"go-employee-api/internal/model"
)

const (
	pictureMaxDuration = 2 * time.Minute
	pictureIdleTimeout = 30 * time.Second
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	userHandler *handler.UserHandler,
	employeeHandler *handler.EmployeeHandler,
	pictureHandler *handler.PictureHandler,
	systemHandler *handler.SystemHandler,
	docsHandler *handler.DocsHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(
		cfg.RateLimitRPM,
		cfg.AuthRateLimitRPM,
		cfg.APIPrefix+"/user/",
		model.UploadsRoute+"/",
	)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/", systemHandler.Root)
	r.Get("/health", systemHandler.Health)
	r.Get("/openapi.yaml", docsHandler.OpenAPI)
	r.Get("/swagger", docsHandler.SwaggerUI)

	r.Route(model.UploadsRoute, func(uploads chi.Router) {
		uploads.Use(middleware.UploadSandbox)
		uploads.Use(middleware.StreamingTimeout(pictureMaxDuration, pictureIdleTimeout))
		uploads.Get("/{name}", pictureHandler.Serve)
		uploads.Get("/{name}/thumbnail", pictureHandler.Thumbnail)
	})

	mount := func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/user", func(user chi.Router) {
			user.Post("/signup", userHandler.Signup)
			user.Post("/login", userHandler.Login)
		})

		api.Route("/emp", func(emp chi.Router) {
			emp.Use(authMiddleware.RequireAuth)

			emp.Get("/employees", employeeHandler.List)
			emp.Post("/employees", employeeHandler.Create)
			emp.Delete("/employees", employeeHandler.Delete)
			emp.Get("/employees/search", employeeHandler.Search)
			emp.Get("/employees/{eid}", employeeHandler.Get)
			emp.Put("/employees/{eid}", employeeHandler.Update)
		})
	}

	if cfg.APIPrefix == "" {
		r.Group(mount)
	} else {
		r.Route(cfg.APIPrefix, mount)
	}

	return r
}
