package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/nexusshop/nexus-api/initializers"
	"github.com/nexusshop/nexus-api/middlewares"
	"github.com/nexusshop/nexus-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB points the package at a fresh in-memory database. Every test
// gets its own schema, named after the test to keep connections apart.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))

	initializers.DB = db
	return db
}

func newTestServer() *gin.Engine {
	gin.SetMode(gin.TestMode)
	server := gin.New()

	cart := server.Group("/cart", middlewares.OptionalAuthenticate())
	cart.GET("", GetCart)
	cart.POST("/items", AddCartItem)
	cart.PUT("/items/:id", UpdateCartItem)
	cart.DELETE("/items/:id", RemoveCartItem)

	server.POST("/checkout", middlewares.Authenticate(), Checkout)
	server.GET("/orders", middlewares.Authenticate(), GetMyOrders)
	server.GET("/orders/:orderNumber", middlewares.Authenticate(), GetOrder)

	return server
}

func createTestUser(t *testing.T, username string) (models.User, string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Role:     "user",
		IsActive: true,
	}
	require.NoError(t, initializers.DB.Create(&user).Error)

	token, err := generateJWT(user)
	require.NoError(t, err)
	return user, token
}

func seedCategory(t *testing.T) models.Category {
	t.Helper()
	category := models.Category{Name: "Electronics", Slug: "electronics"}
	require.NoError(t, initializers.DB.Create(&category).Error)
	return category
}

func seedProduct(t *testing.T, categoryId uint, name, slug, price, discountPrice string, available bool) models.Product {
	t.Helper()

	product := models.Product{
		Name:        name,
		Slug:        slug,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		CategoryID:  categoryId,
		Stock:       10,
		IsAvailable: available,
	}
	if discountPrice != "" {
		product.DiscountPrice = decimal.NullDecimal{
			Decimal: decimal.RequireFromString(discountPrice),
			Valid:   true,
		}
	}
	require.NoError(t, initializers.DB.Create(&product).Error)
	return product
}

func doRequest(server *gin.Engine, method, path string, body any, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == cartSessionCookie {
			return cookie
		}
	}
	t.Fatal("cart session cookie not set")
	return nil
}

type cartTotals struct {
	TotalPrice decimal.Decimal `json:"totalPrice"`
	TotalItems int             `json:"totalItems"`
	Removed    bool            `json:"removed"`
	ItemID     uint            `json:"itemId"`
}

func decodeTotals(t *testing.T, w *httptest.ResponseRecorder) cartTotals {
	t.Helper()
	var totals cartTotals
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &totals))
	return totals
}
