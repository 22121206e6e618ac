package handler

import (
	"log/slog"

	"github.com/accountsvc/account-service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the options NewRouter needs besides the handler.
type RouterConfig struct {
	Logger   *slog.Logger
	Security middleware.SecurityConfig
}

// NewRouter builds the engine with the middleware chain and every route.
func NewRouter(accounts *AccountHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(
		middleware.RequestID(),
		middleware.LoggingMiddleware(cfg.Logger),
		middleware.Recovery(),
		middleware.SecurityHeaders(cfg.Security),
	)
	router.NoRoute(middleware.NotFound)
	router.NoMethod(middleware.MethodNotAllowed)

	router.GET("/", Index)
	router.GET("/health", Health)

	v := router.Group("/accounts")
	{
		v.POST("", accounts.CreateAccount)
		v.GET("", accounts.ListAccounts)
		v.GET("/:id", accounts.GetAccount)
		v.POST("/:id", accounts.UpdateAccount)
		v.PUT("/:id", accounts.UpdateAccount)
		v.DELETE("/:id", accounts.DeleteAccount)
	}

	return router
}
