package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nexusshop/nexus-api/initializers"
	"github.com/nexusshop/nexus-api/models"
	"gorm.io/gorm"
)

const (
	cartSessionCookie = "cart_session"
	cartSessionMaxAge = 30 * 24 * time.Hour

	msgFailedToResolveCart = "Unable to resolve cart"
	msgFailedToLoadCart    = "Unable to load cart"
	msgCartItemNotFound    = "Cart item not found"
)

// resolveCart returns the one cart owned by the caller's identity, creating
// it on first access. Authenticated requests own a user cart; anonymous
// requests own a session cart keyed by the cart_session cookie, which is
// issued here when absent. A cart never has both owners.
func resolveCart(ctx *gin.Context) (models.Cart, error) {
	var cart models.Cart

	if userId, ok := currentUserID(ctx); ok {
		err := initializers.DB.
			Where("user_id = ?", userId).
			Attrs(models.Cart{UserID: &userId}).
			FirstOrCreate(&cart).Error
		return cart, err
	}

	sessionKey, err := ctx.Cookie(cartSessionCookie)
	if err != nil || sessionKey == "" {
		sessionKey = uuid.NewString()
		ctx.SetCookie(cartSessionCookie, sessionKey, int(cartSessionMaxAge.Seconds()), "/", "", false, true)
	}

	err = initializers.DB.
		Where("session_key = ? AND user_id IS NULL", sessionKey).
		Attrs(models.Cart{SessionKey: &sessionKey}).
		FirstOrCreate(&cart).Error
	return cart, err
}

// loadCart reloads a cart with its items and their products so totals can
// be derived.
func loadCart(cartId uint) (models.Cart, error) {
	var cart models.Cart
	err := initializers.DB.
		Preload("Items.Product").
		First(&cart, cartId).Error
	return cart, err
}

func cartPayload(cart models.Cart) gin.H {
	return gin.H{
		"cart":       cart,
		"totalPrice": cart.TotalPrice(),
		"totalItems": cart.TotalItems(),
	}
}

func GetCart(ctx *gin.Context) {
	cart, err := resolveCart(ctx)
	if err != nil {
		log.Println("Cart resolution error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToResolveCart)
		return
	}

	cart, err = loadCart(cart.ID)
	if err != nil {
		log.Println("Cart load error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToLoadCart)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, cartPayload(cart))
}

// AddCartItem adds a product to the caller's cart, incrementing the
// existing line when the product is already in it.
func AddCartItem(ctx *gin.Context) {
	var itemData struct {
		ProductID uint `json:"productId" binding:"required"`
		Quantity  int  `json:"quantity"`
	}
	if err := ctx.ShouldBindJSON(&itemData); err != nil {
		log.Println("Bind error:", err)
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	if itemData.Quantity < 1 {
		itemData.Quantity = 1
	}

	var product models.Product
	err := initializers.DB.
		Where("id = ? AND is_available = ?", itemData.ProductID, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Product not found or unavailable")
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch product")
		}
		return
	}

	cart, err := resolveCart(ctx)
	if err != nil {
		log.Println("Cart resolution error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToResolveCart)
		return
	}

	var cartItem models.CartItem
	err = initializers.DB.
		Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).
		First(&cartItem).Error

	if err == nil {
		cartItem.Quantity += itemData.Quantity
		if err := initializers.DB.Save(&cartItem).Error; err != nil {
			log.Println("Update error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to update cart item quantity.")
			return
		}
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		cartItem = models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  itemData.Quantity,
		}
		if err := initializers.DB.Create(&cartItem).Error; err != nil {
			log.Println("Create error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create cart item")
			return
		}
	} else {
		log.Println("Database error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch cart item")
		return
	}

	cart, err = loadCart(cart.ID)
	if err != nil {
		log.Println("Cart load error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToLoadCart)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message":    product.Name + " added to cart",
		"itemId":     cartItem.ID,
		"totalPrice": cart.TotalPrice(),
		"totalItems": cart.TotalItems(),
	})
}

// UpdateCartItem sets a line's quantity. A quantity of zero or less removes
// the line instead of storing a non-positive value.
func UpdateCartItem(ctx *gin.Context) {
	itemId, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid cart item ID")
		return
	}

	var quantityData struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&quantityData); err != nil {
		log.Println("Bind error:", err)
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	cart, err := resolveCart(ctx)
	if err != nil {
		log.Println("Cart resolution error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToResolveCart)
		return
	}

	var cartItem models.CartItem
	err = initializers.DB.
		Where("id = ? AND cart_id = ?", itemId, cart.ID).
		First(&cartItem).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgCartItemNotFound)
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to fetch cart item")
		}
		return
	}

	removed := false
	if *quantityData.Quantity <= 0 {
		// Hard delete: a soft-deleted row would still hold the unique
		// (cart, product) slot and block re-adding this product.
		if err := initializers.DB.Unscoped().Delete(&cartItem).Error; err != nil {
			log.Println("Delete error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to remove cart item")
			return
		}
		removed = true
	} else {
		cartItem.Quantity = *quantityData.Quantity
		if err := initializers.DB.Save(&cartItem).Error; err != nil {
			log.Println("Update error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to update cart item quantity.")
			return
		}
	}

	cart, err = loadCart(cart.ID)
	if err != nil {
		log.Println("Cart load error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToLoadCart)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"removed":    removed,
		"totalPrice": cart.TotalPrice(),
		"totalItems": cart.TotalItems(),
	})
}

func RemoveCartItem(ctx *gin.Context) {
	itemId, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid cart item ID")
		return
	}

	cart, err := resolveCart(ctx)
	if err != nil {
		log.Println("Cart resolution error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToResolveCart)
		return
	}

	result := initializers.DB.Unscoped().
		Where("id = ? AND cart_id = ?", itemId, cart.ID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		log.Println("Delete error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Unable to remove cart item")
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, msgCartItemNotFound)
		return
	}

	cart, err = loadCart(cart.ID)
	if err != nil {
		log.Println("Cart load error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToLoadCart)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"removed":    true,
		"totalPrice": cart.TotalPrice(),
		"totalItems": cart.TotalItems(),
	})
}
