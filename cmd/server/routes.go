package main

import (
	"net/http"

	"appstore.backend/internal/interfaces/http/handlers"
	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "appstore-backend"
	serviceVersion = "1.0.0"
)

type routeDeps struct {
	authHandler          *handlers.AuthHandler
	passwordResetHandler *handlers.PasswordResetHandler
	deletionHandler      *handlers.AccountDeletionHandler
	authMiddleware       gin.HandlerFunc
	rateLimitMiddleware  gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine, h http.Handler) {
	if h == nil {
		return
	}
	r.GET("/metrics", gin.WrapH(h))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	limited := d.rateLimitMiddleware
	if limited == nil {
		limited = func(c *gin.Context) { c.Next() }
	}

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", limited, d.authHandler.Signup)
			auth.POST("/activate", limited, d.authHandler.Activate)
			auth.POST("/activate/resend", limited, d.authHandler.ResendActivation)
			auth.POST("/login", limited, d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.RefreshToken)
			auth.GET("/me", d.authMiddleware, d.authHandler.GetMe)

			reset := auth.Group("/password-reset", limited)
			{
				reset.POST("/request", d.passwordResetHandler.RequestReset)
				reset.POST("/verify", d.passwordResetHandler.VerifyResetCode)
				reset.POST("/confirm", d.passwordResetHandler.ResetPassword)
			}
		}

		deletion := v1.Group("/account/deletion")
		deletion.Use(d.authMiddleware)
		{
			deletion.GET("", d.deletionHandler.Status)
			deletion.POST("/request", limited, d.deletionHandler.RequestDeletion)
			deletion.POST("/verify", limited, d.deletionHandler.VerifyCode)
			deletion.POST("/confirm", d.deletionHandler.Confirm)
			deletion.POST("/cancel", d.deletionHandler.Cancel)
			deletion.DELETE("/code", d.deletionHandler.Abandon)
		}
	}
}
