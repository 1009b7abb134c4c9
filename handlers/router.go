package handlers

import (
	"net/http"

	"content-review-cms/middleware"
	"content-review-cms/models"

	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Auth    *AuthHandler
	Article *ArticleHandler
	Content *ContentHandler
	Review  *ReviewHandler
	Staff   *StaffHandler
}

func RegisterRoutes(router *gin.Engine, h Handlers, auth *middleware.Authenticator) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	staffOnly := auth.RequireRole(models.RoleEditor, models.RoleAdmin)
	adminOnly := auth.RequireRole(models.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", h.Auth.Register)
			authRoutes.POST("/login", h.Auth.Login)
		}

		protected := v1.Group("/")
		protected.Use(auth.AuthMiddleware())
		{
			protected.GET("/profile", h.Auth.GetProfile)

			articles := protected.Group("/articles")
			{
				articles.POST("", h.Article.CreateArticle)
				articles.GET("", h.Article.GetArticles)
				articles.GET("/:id", h.Article.GetArticle)
				articles.POST("/:id/publish", h.Article.PublishArticle)
				articles.DELETE("/:id", h.Article.DeleteArticle)
			}

			contents := protected.Group("/contents/:type/:id")
			{
				contents.GET("", h.Content.GetMetadata)
				contents.PUT("/access", h.Content.UpdateAccess)
				contents.GET("/permit", h.Content.CheckPermit)
				contents.GET("/history", h.Content.History)
				contents.POST("/forbid", staffOnly, h.Content.Forbid)
				contents.POST("/restore", staffOnly, h.Content.Restore)
			}

			reviews := protected.Group("/reviews", staffOnly)
			{
				reviews.GET("", h.Review.ListReviews)
				reviews.GET("/loads", adminOnly, h.Review.Loads)
				reviews.GET("/:id", h.Review.GetReview)
				reviews.POST("/:id/pass", h.Review.Pass)
				reviews.POST("/:id/reject", h.Review.Reject)
				reviews.POST("/:id/cancel", h.Review.Cancel)
			}

			staff := protected.Group("/staff", adminOnly)
			{
				staff.GET("", h.Staff.ListStaff)
				staff.POST("", h.Staff.AddStaff)
				staff.DELETE("/:user_id", h.Staff.Deactivate)
			}
		}

		public := v1.Group("/public")
		public.Use(auth.OptionalAuth())
		{
			public.GET("/articles/:id", h.Article.GetPublicArticle)
		}
	}
}
