package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nexusshop/nexus-api/controllers"
	"github.com/nexusshop/nexus-api/middlewares"
)

func OrderRoutes(server *gin.Engine) {
	server.POST("/checkout", middlewares.Authenticate(), controllers.Checkout)

	orders := server.Group("/orders", middlewares.Authenticate())
	{
		orders.GET("", controllers.GetMyOrders)
		orders.GET("/:orderNumber", controllers.GetOrder)
	}
}
