package routes

import (
	"strings"
	"time"

	"github.com/adeymoe/testimony/handlers"
	"github.com/adeymoe/testimony/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authLimit := middleware.RateLimitMiddleware(20, time.Minute)

	user := router.Group("/api/user")
	{
		user.POST("/register", authLimit, handlers.Register)
		user.POST("/login", authLimit, handlers.Login)

		userAuth := user.Group("")
		userAuth.Use(middleware.JWTAuthMiddleware())
		userAuth.GET("/me", handlers.GetMe)
		userAuth.PUT("/update", handlers.UpdateProfile)
		userAuth.GET("/profile/:id", handlers.GetUserProfile)
	}

	testimony := router.Group("/api/testimony")
	{
		// Public feed; a valid token personalizes userReaction
		testimony.GET("/all", middleware.OptionalAuthMiddleware(), handlers.GetAllTestimonies)

		testimonyAuth := testimony.Group("")
		testimonyAuth.Use(middleware.JWTAuthMiddleware())
		testimonyAuth.POST("/create", handlers.CreateTestimony)
		testimonyAuth.GET("/my-testimonies", handlers.GetMyTestimonies)
		testimonyAuth.GET("/liked-testimonies", handlers.GetLikedTestimonies)
		testimonyAuth.POST("/:id/like", handlers.ToggleLikeTestimony)
		testimonyAuth.POST("/:id/react", handlers.ToggleReactTestimony)
	}

	router.GET("/api/vapid-public-key", handlers.GetVapidPublicKey)
	router.POST("/api/subscribe", middleware.JWTAuthMiddleware(), handlers.SubscribePush)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(404, gin.H{
				"success": false,
				"message": "Endpoint not found",
			})
			return
		}
		c.Next()
	})

	return router
}
