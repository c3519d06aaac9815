package api

import (
	"github.com/gin-gonic/gin"
	"github.com/imagegenhub/server/internal/api/handler"
	"github.com/imagegenhub/server/internal/api/middleware"
	"github.com/imagegenhub/server/internal/config"
	"github.com/imagegenhub/server/internal/service"
)

// Services bundles everything the router wires handlers to.
type Services struct {
	Auth     *service.AuthService
	Memes    *service.MemeService
	Votes    *service.VoteService
	Comments *service.CommentService
	Uploads  *service.UploadService
}

// SetupRouter configures the Gin router with all routes.
// Parameters:
//   - svc: service bundle for the handlers.
//   - cfg: server configuration (mode, CORS).
//   - uploadsDir: local directory served at /uploads; empty disables it.
// Returns:
//   - *gin.Engine: configured router.
func SetupRouter(svc *Services, cfg *config.ServerConfig, uploadsDir string) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	healthHandler := handler.NewHealthHandler()
	authHandler := handler.NewAuthHandler(svc.Auth)
	memeHandler := handler.NewMemeHandler(svc.Memes)
	voteHandler := handler.NewVoteHandler(svc.Votes)
	commentHandler := handler.NewCommentHandler(svc.Comments)
	uploadHandler := handler.NewUploadHandler(svc.Uploads)

	requireAuth := middleware.RequireAuth(svc.Auth)
	optionalAuth := middleware.OptionalAuth(svc.Auth)

	r.GET("/health", healthHandler.Health)

	// Locally stored uploads are served straight from disk.
	if uploadsDir != "" {
		r.Static("/uploads", uploadsDir)
	}

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		memes := api.Group("/memes")
		{
			memes.POST("/upload", requireAuth, uploadHandler.Upload)
			memes.POST("", requireAuth, memeHandler.Create)
			memes.GET("", optionalAuth, memeHandler.List)
			memes.GET("/trending/day", memeHandler.TrendingDay)
			memes.GET("/trending/week", memeHandler.TrendingWeek)
			memes.GET("/user/dashboard", requireAuth, memeHandler.Dashboard)
			memes.GET("/:id", optionalAuth, memeHandler.Get)
			memes.PUT("/:id", requireAuth, memeHandler.Update)
			memes.DELETE("/:id", requireAuth, memeHandler.Delete)
			memes.POST("/:id/flag", requireAuth, memeHandler.Flag)
		}

		votes := api.Group("/votes")
		{
			votes.POST("/:memeId", requireAuth, voteHandler.Toggle)
		}

		comments := api.Group("/comments")
		{
			comments.POST("/:id", requireAuth, commentHandler.Add)
			comments.GET("/:id", commentHandler.List)
			comments.DELETE("/:id", requireAuth, commentHandler.Delete)
		}
	}

	return r
}
