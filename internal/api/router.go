package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/yamdb/yamdb-api/internal/api/handler"
	"github.com/yamdb/yamdb-api/internal/api/middleware"
	"github.com/yamdb/yamdb-api/internal/core/permission"
	"github.com/yamdb/yamdb-api/internal/core/ports"
)

const apiPrefix = "/api/v1"

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	Log zerolog.Logger

	Tokens middleware.TokenParser
	Users  middleware.UserLoader

	Auth       ports.AuthService
	UserAdmin  ports.UserService
	Categories ports.TaxonomyService
	Genres     ports.TaxonomyService
	Titles     ports.TitleService
	Reviews    ports.ReviewService

	// Readiness lists the dependencies pinged by /health/ready/.
	Readiness map[string]handler.DependencyCheck

	// Registerer and Gatherer back the HTTP metrics; nil means the
	// prometheus defaults.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	registerer, gatherer := d.Registerer, d.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Pre(echomiddleware.AddTrailingSlashWithConfig(echomiddleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, apiPrefix) &&
				!strings.HasPrefix(c.Request().URL.Path, "/health")
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "yamdb",
		Registerer: registerer,
	}))

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Readiness)
	e.GET("/health/", healthHandler.Liveness)
	e.GET("/health/ready/", healthDepsHandler.Readiness)

	v1 := e.Group(apiPrefix)
	authn := middleware.Authenticate(d.Tokens, d.Users)
	route := func(method, path string, h echo.HandlerFunc, policy permission.Policy) {
		v1.Add(method, path, h, authn, middleware.Guard(policy))
	}

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	v1.POST("/auth/signup/", authHandler.Signup, authn)
	v1.POST("/auth/token/", authHandler.Token, authn)

	// --- Users ---
	userHandler := handler.NewUserHandler(d.UserAdmin)
	route(http.MethodGet, "/users/me/", userHandler.Me, permission.Authenticated)
	route(http.MethodPatch, "/users/me/", userHandler.UpdateMe, permission.Authenticated)
	route(http.MethodGet, "/users/", userHandler.List, permission.AdminOnly)
	route(http.MethodPost, "/users/", userHandler.Create, permission.AdminOnly)
	route(http.MethodGet, "/users/:username/", userHandler.Get, permission.AdminOnly)
	route(http.MethodPatch, "/users/:username/", userHandler.Update, permission.AdminOnly)
	route(http.MethodDelete, "/users/:username/", userHandler.Delete, permission.AdminOnly)

	// --- Catalog ---
	for prefix, svc := range map[string]ports.TaxonomyService{"/categories": d.Categories, "/genres": d.Genres} {
		h := handler.NewTaxonomyHandler(svc)
		route(http.MethodGet, prefix+"/", h.List, permission.AdminOrReadOnly)
		route(http.MethodPost, prefix+"/", h.Create, permission.AdminOrReadOnly)
		route(http.MethodDelete, prefix+"/:slug/", h.Delete, permission.AdminOrReadOnly)
	}

	titleHandler := handler.NewTitleHandler(d.Titles)
	route(http.MethodGet, "/titles/", titleHandler.List, permission.AdminOrReadOnly)
	route(http.MethodPost, "/titles/", titleHandler.Create, permission.AdminOrReadOnly)
	route(http.MethodGet, "/titles/:title_id/", titleHandler.Get, permission.AdminOrReadOnly)
	route(http.MethodPatch, "/titles/:title_id/", titleHandler.Update, permission.AdminOrReadOnly)
	route(http.MethodDelete, "/titles/:title_id/", titleHandler.Delete, permission.AdminOrReadOnly)

	// --- Reviews and comments ---
	rh := handler.NewReviewHandler(d.Reviews)
	owned := permission.AdminModeratorAuthorOrReadOnly
	reviews := "/titles/:title_id/reviews/"
	route(http.MethodGet, reviews, rh.ListReviews, owned)
	route(http.MethodPost, reviews, rh.CreateReview, owned)
	route(http.MethodGet, reviews+":review_id/", rh.GetReview, owned)
	route(http.MethodPatch, reviews+":review_id/", rh.UpdateReview, owned)
	route(http.MethodDelete, reviews+":review_id/", rh.DeleteReview, owned)

	comments := reviews + ":review_id/comments/"
	route(http.MethodGet, comments, rh.ListComments, owned)
	route(http.MethodPost, comments, rh.CreateComment, owned)
	route(http.MethodGet, comments+":comment_id/", rh.GetComment, owned)
	route(http.MethodPatch, comments+":comment_id/", rh.UpdateComment, owned)
	route(http.MethodDelete, comments+":comment_id/", rh.DeleteComment, owned)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
