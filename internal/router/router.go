package router

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"cognitrain-go/internal/config"
	"cognitrain-go/internal/handlers"
	"cognitrain-go/internal/models"
	"cognitrain-go/internal/services"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try again later"})
}

func Setup(log *zap.Logger, manager *services.SessionManager, pack *models.ContentPack) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(config.Conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	router.Use(sessions.Sessions("cognitrain", store))

	// --- Now that sessions are initialized, other middleware can use them ---
	router.Use(CSRFProtection())
	router.Use(UserLoaderMiddleware())

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	// Handlers and routes
	authHandler := handlers.NewAuthHandler(log)
	gamesHandler := handlers.NewGamesHandler(log, manager, pack)
	resultsHandler := handlers.NewResultsHandler(log)
	userHandler := handlers.NewUserHandler(log)

	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 5,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	api := router.Group("/api")
	{
		api.POST("/register", limiter, authHandler.Register)
		api.POST("/login", limiter, authHandler.Login)
		api.POST("/logout", authHandler.Logout)
		api.GET("/games", gamesHandler.ListGames)

		authorized := api.Group("/")
		authorized.Use(AuthRequired())
		{
			sessionRoutes := authorized.Group("/sessions")
			{
				sessionRoutes.POST("", gamesHandler.CreateSession)
				sessionRoutes.POST("/:id/start", gamesHandler.StartSession)
				sessionRoutes.GET("/:id", gamesHandler.GetState)
				sessionRoutes.POST("/:id/answer", gamesHandler.SubmitAnswer)
				sessionRoutes.POST("/:id/restart", gamesHandler.RestartSession)
				sessionRoutes.DELETE("/:id", gamesHandler.DeleteSession)
			}

			authorized.GET("/results", resultsHandler.ListResults)
			authorized.GET("/results/:id", resultsHandler.GetResult)
			authorized.GET("/progress", resultsHandler.GetProgress)
			authorized.GET("/progress/chart", resultsHandler.GetProgressChart)

			profileRoutes := authorized.Group("/profile")
			{
				profileRoutes.GET("", userHandler.GetProfile)
				profileRoutes.POST("/update-info", userHandler.UpdateInfo)
				profileRoutes.POST("/update-password", userHandler.UpdatePassword)
				profileRoutes.POST("/delete", userHandler.DeleteAccount)
			}
		}
	}

	return router
}
