package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/movieshelf/internal/handler"
	"github.com/user/movieshelf/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(h.Config.AppSecret, h.Config.IsProduction())

	// ==================== 认证 ====================
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", requireAuth, h.Me)
	}

	// ==================== 影片收藏（需要登录）====================
	movies := r.Group("/movies")
	movies.Use(requireAuth)
	{
		movies.GET("", h.ListMovies)
		movies.POST("", h.CreateMovie)
		movies.GET("/:id", h.GetMovie)
		movies.PUT("/:id", h.UpdateMovie)
		movies.DELETE("/:id", h.DeleteMovie)
	}
}
