package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/nexusshop/nexus-api/initializers"
	"github.com/nexusshop/nexus-api/models"
	"github.com/nexusshop/nexus-api/utils"
	"gorm.io/gorm"
)

const (
	msgEmptyCart           = "Your cart is empty"
	msgInvalidOrderStatus  = "Invalid order status"
	msgInvalidPayment      = "Invalid payment method"
	msgFailedToCreateOrder = "Failed to create order"
)

// Checkout converts the caller's cart into a committed order. Order row,
// order items and cart-line deletion happen in one transaction; the cart
// row itself survives empty for reuse. Item prices are frozen from each
// product's final price at this instant.
func Checkout(ctx *gin.Context) {
	userId, ok := currentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var checkoutData struct {
		ShippingAddress string `json:"shippingAddress" binding:"required"`
		BillingAddress  string `json:"billingAddress" binding:"required"`
		PaymentMethod   string `json:"paymentMethod" binding:"required"`
		Notes           string `json:"notes"`
	}
	if err := ctx.ShouldBindJSON(&checkoutData); err != nil {
		log.Println("Bind error:", err)
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	if !models.ValidPaymentMethod(checkoutData.PaymentMethod) {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidPayment)
		return
	}

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

	if cart.TotalItems() == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, msgEmptyCart)
		return
	}

	order := models.Order{
		UserID:          userId,
		OrderNumber:     utils.GenerateOrderNumber(),
		Status:          models.OrderStatusPending,
		PaymentMethod:   checkoutData.PaymentMethod,
		PaymentStatus:   "pending",
		TotalAmount:     cart.TotalPrice(),
		ShippingAddress: checkoutData.ShippingAddress,
		BillingAddress:  checkoutData.BillingAddress,
		Notes:           checkoutData.Notes,
	}

	tx := initializers.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		log.Println("Order creation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToCreateOrder)
		return
	}

	for _, item := range cart.Items {
		orderItem := models.OrderItem{
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Price:       item.Product.FinalPrice(),
		}
		if err := tx.Create(&orderItem).Error; err != nil {
			tx.Rollback()
			log.Println("Order item creation error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create order items")
			return
		}
	}

	// Hard delete so the cart can take the same products again after checkout.
	if err := tx.Unscoped().Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		tx.Rollback()
		log.Println("Cart clearing error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Println("Checkout commit error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to save order")
		return
	}

	response := gin.H{
		"message":     "Order placed successfully.",
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"totalAmount": order.TotalAmount,
	}

	// The order is committed at this point. A payment gateway failure must
	// not undo it, so initiation happens outside the transaction.
	if gatewayConfigured() && checkoutData.PaymentMethod == models.PaymentMethodCreditCard {
		redirectURL, trackingId, err := initiatePayment(order)
		if err != nil {
			log.Printf("Payment initiation failed for order %s: %v", order.OrderNumber, err)
		} else {
			if err := initializers.DB.Model(&order).Updates(map[string]any{
				"payment_tracking_id": trackingId,
				"updated_at":          time.Now(),
			}).Error; err != nil {
				log.Printf("Order %s created, but tracking ID not saved: %s", order.OrderNumber, trackingId)
			}
			response["redirectUrl"] = redirectURL
			response["paymentTrackingId"] = trackingId
		}
	}

	sendJSONResponse(ctx, http.StatusCreated, response)
}

func gatewayConfigured() bool {
	return os.Getenv("PAYMENT_GATEWAY_URL") != ""
}

// initiatePayment submits the committed order to the configured payment
// gateway and returns the redirect URL and tracking id it issues.
func initiatePayment(order models.Order) (string, string, error) {
	gatewayURL := os.Getenv("PAYMENT_GATEWAY_URL")
	apiKey := os.Getenv("PAYMENT_GATEWAY_API_KEY")
	if apiKey == "" {
		return "", "", fmt.Errorf("payment gateway credentials are not set")
	}

	paymentRequest := map[string]any{
		"reference":    order.OrderNumber,
		"amount":       order.TotalAmount,
		"currency":     os.Getenv("PAYMENT_CURRENCY"),
		"description":  fmt.Sprintf("Payment for order %s", order.OrderNumber),
		"callback_url": os.Getenv("FRONTEND_URL") + "/payment/callback",
	}

	resp, err := resty.New().SetTimeout(30 * time.Second).
		R().
		SetHeaders(map[string]string{
			"Authorization": "Bearer " + apiKey,
			"Accept":        "application/json",
			"Content-Type":  "application/json",
		}).
		SetBody(paymentRequest).
		Post(gatewayURL + "/payments")

	if err != nil {
		return "", "", err
	}
	if resp.StatusCode() != 200 {
		return "", "", fmt.Errorf("payment request failed with status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var paymentResp map[string]any
	if err := json.Unmarshal(resp.Body(), &paymentResp); err != nil {
		return "", "", fmt.Errorf("failed to parse payment response: %w", err)
	}

	redirectURL, rOK := paymentResp["redirect_url"].(string)
	trackingId, tOK := paymentResp["tracking_id"].(string)
	if !rOK || !tOK || redirectURL == "" || trackingId == "" {
		return "", "", fmt.Errorf("incomplete response from payment gateway")
	}

	return redirectURL, trackingId, nil
}

// GetMyOrders returns the caller's orders, most recent first.
func GetMyOrders(ctx *gin.Context) {
	userId, ok := currentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var orders []models.Order
	result := initializers.DB.Preload("Items").
		Where("user_id = ?", userId).
		Order("created_at desc").
		Find(&orders)
	if result.Error != nil {
		log.Println(result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch orders.")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
}

func GetOrder(ctx *gin.Context) {
	userId, ok := currentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	orderNumber := ctx.Param("orderNumber")

	var order models.Order
	result := initializers.DB.Preload("Items").
		Where("order_number = ? AND user_id = ?", orderNumber, userId).
		First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Println(result.Error)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order.")
		}
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}

// GetOrders lists all orders for the admin screens, paginated and
// searchable by order number.
func GetOrders(ctx *gin.Context) {
	var orders []models.Order

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "15"))
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	sortOrder := ctx.DefaultQuery("sort", "desc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	query := initializers.DB.Preload("Items")
	if search := ctx.Query("search"); search != "" {
		query = query.Where("order_number LIKE ?", "%"+search+"%")
	}
	query = query.Order("created_at " + sortOrder)

	result := query.Limit(limit).Offset(offset).Find(&orders)
	if result.Error != nil {
		respondWithError(ctx, http.StatusInternalServerError, "Unable to fetch orders", result.Error)
		return
	}

	var count int64
	countQuery := initializers.DB.Model(&models.Order{})
	if search := ctx.Query("search"); search != "" {
		countQuery = countQuery.Where("order_number LIKE ?", "%"+search+"%")
	}
	countQuery.Count(&count)

	previousPage := page - 1
	nextPage := page + 1
	totalPages := math.Ceil(float64(count) / float64(limit))

	ctx.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"metadata": gin.H{
			"total":        count,
			"currentPage":  page,
			"limit":        limit,
			"hasPrevPage":  previousPage > 0,
			"hasNextPage":  int(totalPages) > page,
			"previousPage": previousPage,
			"nextPage":     nextPage,
		},
	})
}

// UpdateOrderStatus assigns a new status to an order. Only the value is
// validated; transitions between statuses are not guarded.
func UpdateOrderStatus(ctx *gin.Context) {
	var orderStatusData struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&orderStatusData); err != nil {
		log.Println(err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse request body")
		return
	}

	if !models.ValidOrderStatus(orderStatusData.Status) {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidOrderStatus)
		return
	}

	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		log.Println(err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse orderId")
		return
	}

	var order models.Order
	if err := initializers.DB.First(&order, orderId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
		} else {
			log.Println(err)
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch order.")
		}
		return
	}

	if err := initializers.DB.Model(&order).Update("status", orderStatusData.Status).Error; err != nil {
		log.Println(err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Order status updated successfully."})
}

func DeleteOrder(ctx *gin.Context) {
	orderId, err := strconv.Atoi(ctx.Param("orderId"))
	if err != nil {
		log.Println(err)
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to parse order id.")
		return
	}

	var order models.Order
	if err := initializers.DB.First(&order, orderId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "Order not found")
			return
		}
		log.Println(err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to delete order.")
		return
	}

	err = initializers.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&order).Error
	})
	if err != nil {
		log.Println(err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to delete order.")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Order deleted successfully."})
}

func GetUndeliveredOrders(ctx *gin.Context) {
	var count int64

	result := initializers.DB.
		Model(&models.Order{}).
		Where("status NOT IN ?", []string{models.OrderStatusDelivered, models.OrderStatusCancelled}).
		Count(&count)
	if result.Error != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to count undelivered orders")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"undeliveredOrderCount": count})
}
