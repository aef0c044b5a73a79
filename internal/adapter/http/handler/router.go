package handler

import (
	"wallet-console/internal/adapter/http/middleware"
	redisStore "wallet-console/internal/adapter/storage/redis"
	"wallet-console/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	BankSvc        ports.BankService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	LoginRule      middleware.RateLimitRule
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with the account service routes.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20))
	r.Use(middleware.AuditLog(deps.Logger))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	loginLimit := func(c *gin.Context) { c.Next() }
	if deps.RateLimitStore != nil {
		loginLimit = middleware.RateLimiter(deps.RateLimitStore, "auth_login", deps.LoginRule, deps.Logger)
	}

	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.SignUp)
		auth.POST("/login", loginLimit, authHandler.Login)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	userHandler := NewUserHandler(deps.BankSvc)
	user := r.Group("/user", jwtAuth)
	{
		user.GET("/profile", userHandler.Profile)
		user.POST("/top-up", userHandler.TopUp)
		user.POST("/transfer", userHandler.Transfer)
		user.POST("/exchange", userHandler.Exchange)
		user.GET("/transactions", userHandler.Transactions)
	}

	adminHandler := NewAdminHandler(deps.BankSvc)
	admin := r.Group("/admin", jwtAuth, middleware.AdminOnly())
	{
		admin.GET("/users", adminHandler.Users)
		admin.GET("/transactions", adminHandler.Transactions)
	}

	return r
}
