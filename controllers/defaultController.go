package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexusshop/nexus-api/initializers"
	"github.com/nexusshop/nexus-api/models"
)

// GetHome returns the storefront landing data: the newest available
// products, currently discounted products and the category list.
func GetHome(ctx *gin.Context) {
	var featured []models.Product
	if err := initializers.DB.
		Where("is_available = ?", true).
		Order("created_at desc").
		Limit(8).
		Find(&featured).Error; err != nil {
		log.Println("Featured products error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	var discounted []models.Product
	if err := initializers.DB.
		Where("discount_price IS NOT NULL AND is_available = ?", true).
		Limit(4).
		Find(&discounted).Error; err != nil {
		log.Println("Discounted products error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	var categories []models.Category
	if err := initializers.DB.Order("name asc").Limit(6).Find(&categories).Error; err != nil {
		log.Println("Categories error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"featuredProducts":   featured,
		"discountedProducts": discounted,
		"categories":         categories,
	})
}
