package wire

import (
	"net/http"

	"hris-auth/internal/adaptor"
	"hris-auth/internal/data/repository"
	"hris-auth/internal/usecase"
	"hris-auth/pkg/middleware"
	"hris-auth/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the assembled HTTP surface.
type App struct {
	Router *chi.Mux
}

// Wiring builds services and handlers on top of repo and mounts every route.
func Wiring(repo *repository.Repository, config *utils.Config, deps usecase.Dependencies, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, deps, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, config, logger),
	}
}

func setupRouter(handler *adaptor.Handler, config *utils.Config, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(config.App.AllowedOrigins))

	authenticated := middleware.AuthJWT([]byte(config.JWT.Secret), logger)

	wireAuth(r, handler.Auth)
	wirePassword(r, handler.Password, authenticated)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
