package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nexusshop/nexus-api/controllers"
	"github.com/nexusshop/nexus-api/middlewares"
)

func AuthRoutes(server *gin.Engine) {
	auth := server.Group("/auth")
	{
		auth.POST("/signup", controllers.Signup)
		auth.POST("/login", controllers.Login)
		auth.POST("/forgot-password", controllers.SendPasswordResetLink)
		auth.POST("/reset-password/:resetToken", controllers.ResetPassword)
	}

	me := server.Group("/me", middlewares.Authenticate())
	{
		me.GET("", controllers.GetProfile)
		me.PUT("", controllers.UpdateProfile)
	}
}
