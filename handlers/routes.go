package handlers

import "github.com/gin-gonic/gin"

// Set groups every handler the API serves.
type Set struct {
	Analytics  *AnalyticsHandlers
	Auth       *AuthHandlers
	Users      *UserHandlers
	Categories *CategoryHandlers
	Products   *ProductHandlers
	Queries    *QueryHandlers
	Media      *MediaHandlers
	Contact    *ContactHandlers
	Health     *HealthHandlers
}

// RegisterRoutes mounts the API under /api. authRequired guards the user
// endpoints and logout; catalog, query and analytics routes are public.
func RegisterRoutes(r *gin.Engine, h Set, authRequired gin.HandlerFunc) {
	r.GET("/", h.Health.Root)
	r.GET("/health", h.Health.Health)

	api := r.Group("/api")

	analytics := api.Group("/analytics")
	{
		analytics.POST("", h.Analytics.CreateEvent)
		analytics.GET("/reports", h.Analytics.GetReport)
		analytics.GET("/reports/top-paths", h.Analytics.GetTopNPagePaths)
		analytics.GET("/reports/event-counts", h.Analytics.GetEventCountsOverTime)
		analytics.GET("/:id", h.Analytics.GetEvent)
		analytics.DELETE("/:id", h.Analytics.DeleteEvent)
	}

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/forgot-password", h.Auth.ForgotPassword)
		auth.POST("/validate-otp", h.Auth.ValidateOTP)
		auth.POST("/reset-password", h.Auth.ResetPassword)
		auth.POST("/logout", authRequired, h.Auth.Logout)
	}

	users := api.Group("/users", authRequired)
	{
		users.GET("", h.Users.ListUsers)
		users.GET("/profile", h.Users.GetProfile)
		users.PUT("/profile", h.Users.UpdateProfile)
		users.PUT("/:id", h.Users.UpdateUser)
	}

	categories := api.Group("/categories")
	{
		categories.POST("", h.Categories.CreateCategory)
		categories.GET("", h.Categories.ListCategories)
		categories.PUT("/:id", h.Categories.UpdateCategory)
		categories.DELETE("/:id", h.Categories.DeleteCategory)
	}

	products := api.Group("/products")
	{
		products.POST("", h.Products.CreateProduct)
		products.GET("", h.Products.ListProducts)
		products.GET("/:id", h.Products.GetProduct)
		products.PUT("/:id", h.Products.UpdateProduct)
		products.DELETE("/:id", h.Products.DeleteProduct)
	}

	queries := api.Group("/queries")
	{
		queries.POST("", h.Queries.CreateQuery)
		queries.GET("", h.Queries.ListQueries)
		queries.GET("/:id", h.Queries.GetQuery)
		queries.PATCH("/:id/status", h.Queries.UpdateQueryStatus)
		queries.DELETE("/:id", h.Queries.DeleteQuery)
	}

	api.POST("/upload", h.Media.Upload)
	api.DELETE("/delete", h.Media.Delete)

	api.POST("/contact", h.Contact.Submit)
}
