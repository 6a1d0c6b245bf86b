package http

import (
	"time"

	"task_manager/internal/http/handlers"
	"task_manager/internal/http/middleware"
	"task_manager/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// Deps carries everything the router needs. Schema, Redis and Tokens are
// optional. RateLimit 0 leaves the API unlimited.
type Deps struct {
	Tasks          handlers.TaskService
	DB             handlers.Pinger
	Schema         handlers.SchemaChecker
	Hub            *ws.Hub
	Redis          *redis.Client
	Tokens         middleware.TokenParser
	Version        string
	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration
}

// NewEngine builds the gin engine with the global middleware chain and all
// routes registered.
func NewEngine(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLog())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(d.AllowedOrigins))
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := handlers.NewHandler(d.Tasks)
	healthHandler := handlers.NewHealthHandler(d.DB, d.Schema, d.Version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if d.Hub != nil {
		r.GET("/ws", ws.HandleWS(d.Hub, d.AllowedOrigins))
	}

	api := r.Group("")
	api.Use(middleware.RateLimit(d.Redis, d.RateLimit, d.RateWindow))
	registerTaskRoutes(api, h, middleware.RequireBearer(d.Tokens))
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.Handler, guard gin.HandlerFunc) {
	api.GET("/", h.ListTasks)
	api.POST("/tasks/", guard, h.CreateTask)
	api.GET("/tasks/:task_id", h.GetTask)
	api.PUT("/tasks/:task_id", guard, h.UpdateTask)
	api.DELETE("/tasks/:task_id", guard, h.DeleteTask)
}
