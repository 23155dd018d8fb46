package routers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/controllers"
	"github.com/ProgramMysticxxx/blog-project/initializers"
	"github.com/ProgramMysticxxx/blog-project/middlewares"
)

// New builds the API on the initialized globals.
func New() *gin.Engine {
	r := gin.Default()

	corsConfig := cors.Config{
		AllowOrigins:     initializers.SplitList(initializers.Cfg.CORSOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	}
	r.Use(cors.New(corsConfig))

	// Uploaded blobs
	r.Static(initializers.Cfg.MediaURL, initializers.Cfg.UploadsDir)

	apiGroup := r.Group("/api", middlewares.Authenticate)
	auth := middlewares.RequireAuthentication

	authGroup := apiGroup.Group("/auth")
	{
		authGroup.POST("/register", controllers.Register) // Log Audit
		authGroup.POST("/login", controllers.Login)       // Log Audit
		authGroup.POST("/logout", controllers.Logout)
		authGroup.DELETE("/me", auth, controllers.DeleteMe) // Log Audit
	}

	{
		apiGroup.GET("/articles", controllers.FetchArticles)
		apiGroup.POST("/articles", auth, controllers.PostArticle) // Log Audit
		apiGroup.GET("/articles/:id", controllers.FetchArticle)
		apiGroup.PUT("/articles/:id", auth, controllers.PutArticle)       // Log Audit
		apiGroup.PATCH("/articles/:id", auth, controllers.PutArticle)     // Log Audit
		apiGroup.DELETE("/articles/:id", auth, controllers.RemoveArticle) // Log Audit
		apiGroup.POST("/articles/:id/favorite", auth, controllers.FavoriteArticle)
		apiGroup.DELETE("/articles/:id/favorite", auth, controllers.FavoriteArticle)
		apiGroup.POST("/articles/:id/rate", auth, controllers.RateArticle)
		apiGroup.DELETE("/articles/:id/rate", auth, controllers.RateArticle)
	}

	{
		apiGroup.GET("/comments", controllers.FetchComments)
		apiGroup.POST("/comments", auth, controllers.PostComment) // Log Audit
		apiGroup.GET("/comments/:id", controllers.FetchComment)
		apiGroup.PUT("/comments/:id", auth, controllers.PutComment)       // Log Audit
		apiGroup.PATCH("/comments/:id", auth, controllers.PutComment)     // Log Audit
		apiGroup.DELETE("/comments/:id", auth, controllers.RemoveComment) // Log Audit
		apiGroup.POST("/comments/:id/rate", auth, controllers.RateComment)
		apiGroup.DELETE("/comments/:id/rate", auth, controllers.RateComment)
	}

	{
		apiGroup.GET("/profiles", controllers.FetchProfiles)
		apiGroup.GET("/profiles/:username", controllers.FetchProfile)
		apiGroup.PUT("/profiles/:username", auth, controllers.ModifyProfile)   // Log Audit
		apiGroup.PATCH("/profiles/:username", auth, controllers.ModifyProfile) // Log Audit
		apiGroup.DELETE("/profiles/:username", controllers.RemoveProfile)
		apiGroup.POST("/profiles/:username/subscribe", auth, controllers.Subscribe)   // Log Audit
		apiGroup.DELETE("/profiles/:username/subscribe", auth, controllers.Subscribe) // Log Audit
	}

	{
		apiGroup.GET("/categories", controllers.FetchCategories)
		apiGroup.GET("/categories/:name", controllers.FetchCategory)
		apiGroup.GET("/tags", controllers.FetchTags)
		apiGroup.GET("/tags/:name", controllers.FetchTag)
	}

	{
		apiGroup.POST("/uploaded_images", auth, controllers.UploadImage) // Log Audit
		apiGroup.GET("/uploaded_images/:id", controllers.FetchImage)
		apiGroup.DELETE("/uploaded_images/:id", auth, controllers.RemoveImage) // Log Audit
		apiGroup.POST("/uploaded_files", auth, controllers.UploadFile)         // Log Audit
		apiGroup.GET("/uploaded_files/:id", controllers.FetchFile)
	}

	backgroundGroup := apiGroup.Group("/bg", auth, middlewares.RequireAuthorization(access.Backstage))
	{
		backgroundGroup.POST("/categories", controllers.PostCategory)           // Log Audit
		backgroundGroup.DELETE("/categories/:name", controllers.RemoveCategory) // Log Audit
		backgroundGroup.GET("/admins", controllers.GetAdmins)
		backgroundGroup.POST("/admins", controllers.AddAdmin)             // Log Audit
		backgroundGroup.DELETE("/admins/:username", controllers.DelAdmin) // Log Audit
		backgroundGroup.GET("/logs", controllers.DownloadLogFile)
	}

	return r
}
