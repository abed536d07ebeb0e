package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexusshop/nexus-api/admin"
	"github.com/nexusshop/nexus-api/controllers"
	"github.com/nexusshop/nexus-api/middlewares"
)

// RegisterAdminResources fills the registry with the administrable
// resources of the shop.
func RegisterAdminResources(registry *admin.Registry) {
	registry.Add("products", func(group *gin.RouterGroup) {
		group.POST("", controllers.CreateProduct)
		group.PUT("/:id", controllers.UpdateProduct)
		group.DELETE("/:id", controllers.DeleteProduct)
		group.POST("/:id/images", controllers.UploadProductImages)
	})

	registry.Add("categories", func(group *gin.RouterGroup) {
		group.POST("", controllers.CreateCategory)
	})

	registry.Add("orders", func(group *gin.RouterGroup) {
		group.GET("", controllers.GetOrders)
		group.GET("/undelivered-count", controllers.GetUndeliveredOrders)
		group.PUT("/:orderId/status", controllers.UpdateOrderStatus)
		group.DELETE("/:orderId", controllers.DeleteOrder)
	})
}

// AdminRoutes mounts the registry behind authentication and the admin
// role guard.
func AdminRoutes(server *gin.Engine, registry *admin.Registry) {
	group := server.Group("/admin", middlewares.Authenticate(), middlewares.RequireAdmin())

	group.GET("", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"resources": registry.Names()})
	})

	registry.Mount(group)
}
