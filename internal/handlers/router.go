package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vizlab/dataviz-api/internal/auth"
	"github.com/vizlab/dataviz-api/internal/middleware"
	"github.com/vizlab/dataviz-api/internal/models"
)

// RouterDeps carries everything route registration needs. RateLimit is
// optional; when set it wraps the API group but not the health endpoint.
type RouterDeps struct {
	Tokens         *auth.TokenIssuer
	RateLimit      gin.HandlerFunc
	Auth           *AuthHandler
	DataSources    *DataSourceHandler
	Visualizations *VisualizationHandler
	Dashboards     *DashboardHandler
}

// RegisterRoutes wires the API route table onto r. Reads require a valid
// access token; writes additionally require the editor role. The public
// dashboard route takes no token at all.
func RegisterRoutes(r *gin.Engine, deps RouterDeps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if deps.RateLimit != nil {
		api.Use(deps.RateLimit)
	}
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", deps.Auth.Register)
			authRoutes.POST("/login", deps.Auth.Login)
			authRoutes.POST("/refresh", deps.Auth.Refresh)
			authRoutes.GET("/me", middleware.RequireAuth(deps.Tokens), deps.Auth.Me)
		}

		// Public dashboard access, no token required
		api.GET("/dashboards/public/:id", deps.Dashboards.GetPublic)

		requireAuth := middleware.RequireAuth(deps.Tokens)
		requireEditor := middleware.RequireRole(models.RoleEditor)

		sources := api.Group("/data_sources")
		sources.Use(requireAuth)
		{
			sources.GET("", deps.DataSources.List)
			sources.POST("", requireEditor, deps.DataSources.Create)
			sources.GET("/:id", deps.DataSources.Get)
			sources.PUT("/:id", requireEditor, deps.DataSources.Update)
			sources.DELETE("/:id", requireEditor, deps.DataSources.Delete)
			sources.POST("/:id/query", deps.DataSources.Query)
			sources.GET("/:id/tables", deps.DataSources.Tables)
			sources.GET("/:id/tables/:table/columns", deps.DataSources.Columns)
		}

		vizs := api.Group("/visualizations")
		vizs.Use(requireAuth)
		{
			vizs.GET("", deps.Visualizations.List)
			vizs.POST("", requireEditor, deps.Visualizations.Create)
			vizs.GET("/:id", deps.Visualizations.Get)
			vizs.PUT("/:id", requireEditor, deps.Visualizations.Update)
			vizs.DELETE("/:id", requireEditor, deps.Visualizations.Delete)
			vizs.GET("/:id/data", deps.Visualizations.GetData)
		}

		dashboards := api.Group("/dashboards")
		dashboards.Use(requireAuth)
		{
			dashboards.GET("", deps.Dashboards.List)
			dashboards.POST("", requireEditor, deps.Dashboards.Create)
			dashboards.GET("/:id", deps.Dashboards.Get)
			dashboards.PUT("/:id", requireEditor, deps.Dashboards.Update)
			dashboards.DELETE("/:id", requireEditor, deps.Dashboards.Delete)
		}
	}
}
