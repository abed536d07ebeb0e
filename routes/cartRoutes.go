package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nexusshop/nexus-api/controllers"
	"github.com/nexusshop/nexus-api/middlewares"
)

func CartRoutes(server *gin.Engine) {
	cart := server.Group("/cart", middlewares.OptionalAuthenticate())
	{
		cart.GET("", controllers.GetCart)
		cart.POST("/items", controllers.AddCartItem)
		cart.PUT("/items/:id", controllers.UpdateCartItem)
		cart.DELETE("/items/:id", controllers.RemoveCartItem)
	}
}
