// Package router 注册全部HTTP路由
package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/response"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Health *handler.HealthHandler
	Books  *handler.BookHandler
	Users  *handler.UserHandler
	Loans  *handler.LoanHandler
}

// New 创建gin引擎
// 中间件顺序：Recovery -> Tracing -> RequestLogger -> Metrics -> 路由
func New(
	cfg *config.Config,
	h Handlers,
	auth *middleware.AuthMiddleware,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogger(slog.Default()))
	r.Use(middleware.Metrics(m))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperrors.ErrNotFound)
	})

	r.GET("/ping", h.Health.Ping)
	r.GET("/healthz", h.Health.Healthz)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	if !cfg.Server.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/api/books", h.Books.ListBooks)

	books := r.Group("/books")
	{
		books.GET("", h.Books.AllBooks)
		books.GET("/:id", h.Books.GetBook)
		books.POST("", h.Books.CreateBook)
		books.PUT("/:id", h.Books.UpdateBook)
		books.DELETE("/:id", h.Books.DeleteBook)
	}

	users := r.Group("/users")
	{
		public := users.Group("")
		if cfg.RateLimit.Enabled {
			public.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
		}
		public.POST("/register", h.Users.Register)
		public.POST("/login", h.Users.Login)

		authed := users.Group("", auth.RequireAuth())
		authed.POST("/logout", h.Users.Logout)
		authed.GET("/me", h.Users.Me)
		authed.PUT("/me", h.Users.UpdateMe)

		admin := users.Group("", auth.RequireAuth(), middleware.RequireAdmin())
		admin.GET("", h.Users.ListUsers)
		admin.DELETE("/:id", h.Users.DeleteUser)
	}

	loans := r.Group("/transactions", auth.RequireAuth())
	{
		loans.POST("", h.Loans.Checkout)
		loans.GET("", h.Loans.All)
		loans.GET("/active", h.Loans.Active)
		loans.GET("/overdue", h.Loans.Overdue)
		loans.GET("/user/:id", h.Loans.ByUser)
		loans.GET("/book/:id", h.Loans.ByBook)
		loans.GET("/:id", h.Loans.ByID)
		loans.PUT("/:id/return", h.Loans.Return)
		loans.DELETE("/:id", middleware.RequireAdmin(), h.Loans.Delete)
	}

	return r
}
