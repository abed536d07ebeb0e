package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nexusshop/nexus-api/controllers"
)

func ProductRoutes(server *gin.Engine) {
	server.GET("/products", controllers.GetProducts)
	server.GET("/products/:slug", controllers.GetProduct)
	server.GET("/categories", controllers.GetCategories)
	server.GET("/categories/:slug", controllers.GetCategory)
}
