package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/nexusshop/nexus-api/initializers"
	"github.com/nexusshop/nexus-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCartIsIdempotentForAnonymousSession(t *testing.T) {
	setupTestDB(t)
	server := newTestServer()

	first := doRequest(server, http.MethodGet, "/cart", nil, "")
	require.Equal(t, http.StatusOK, first.Code)
	cookie := sessionCookie(t, first)

	second := doRequest(server, http.MethodGet, "/cart", nil, "", cookie)
	require.Equal(t, http.StatusOK, second.Code)

	var count int64
	initializers.DB.Model(&models.Cart{}).Count(&count)
	assert.Equal(t, int64(1), count, "repeated resolution must not create duplicate carts")

	var cart models.Cart
	require.NoError(t, initializers.DB.First(&cart).Error)
	assert.Nil(t, cart.UserID)
	require.NotNil(t, cart.SessionKey)
	assert.Equal(t, cookie.Value, *cart.SessionKey)
}

func TestResolveCartIsIdempotentForUser(t *testing.T) {
	setupTestDB(t)
	server := newTestServer()
	user, token := createTestUser(t, "alice")

	for i := 0; i < 2; i++ {
		w := doRequest(server, http.MethodGet, "/cart", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var carts []models.Cart
	require.NoError(t, initializers.DB.Find(&carts).Error)
	require.Len(t, carts, 1)
	require.NotNil(t, carts[0].UserID)
	assert.Equal(t, user.ID, *carts[0].UserID)
	assert.Nil(t, carts[0].SessionKey, "a user cart must not carry a session key")
}

func TestAddCartItemCreatesLine(t *testing.T) {
	setupTestDB(t)
	server := newTestServer()
	category := seedCategory(t)
	product := seedProduct(t, category.ID, "Widget", "widget", "25.50", "", true)

	w := doRequest(server, http.MethodPost, "/cart/items", map[string]any{"productId": product.ID}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	totals := decodeTotals(t, w)
	assert.Equal(t, 1, totals.TotalItems)
	assert.True(t, totals.TotalPrice.Equal(decimal.RequireFromString("25.50")))
}

func TestAddCartItemIncrementsExistingLine(t *testing.T) {
	setupTestDB(t)
	server := newTestServer()
	category := seedCategory(t)
	product := seedProduct(t, category.ID, "Widget", "widget", "10.00", "", true)

	first := doRequest(server, http.MethodPost, "/cart/items", map[string]any{"productId": product.ID, "quantity": 2}, "")
	require.Equal(t, http.StatusCreated, first.Code)
	cookie := sessionCookie(t, first)

	second := doRequest(server, http.MethodPost, "/cart/items", map[string]any{"productId": product.ID, "quantity": 3}, "", cookie)
	require.Equal(t, http.StatusCreated, second.Code)

	var lineCount int64
	initializers.DB.Model(&models.CartItem{}).Count(&lineCount)
	assert.Equal(t, int64(1), lineCount, "same product must stay on one line")

	totals := decodeTotals(t, second)
	assert.Equal(t, 5, totals.TotalItems)
	assert.True(t, totals.TotalPrice.Equal(decimal.RequireFromString("50.00")))
}

func TestAddUnavailableProductFailsWithoutSideEffects(t *testing.T) {
	setupTestDB(t)
	server := newTestServer()
	category := seedCategory(t)
	product := seedProduct(t, category.ID, "Ghost", "ghost", "10.00", "", false)

	w := doRequest(server, http.MethodPost, "/cart/items", map[string]any{"productId": product.ID}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	missing := doRequest(server, http.MethodPost, "/cart/items", map[string]any{"productId": 9999}, "")
	assert.Equal(t, http.StatusNotFound, missing.Code)

	var lineCount int64
	initializers.DB.Model(&models.CartItem{}).Count(&lineCount)
	assert.Equal(t, int64(0), lineCount)
}

func TestUpdateCartItemQuantity(t *testing.T) {
	setupTestDB(t)
	server := newTestServer()
	category := seedCategory(t)
	product := seedProduct(t, category.ID, "Widget", "widget", "10.00", "", true)

	added := doRequest(server, http.MethodPost, "/cart/items", map[string]any{"productId": product.ID}, "")
	require.Equal(t, http.StatusCreated, added.Code)
	cookie := sessionCookie(t, added)
	itemId := decodeTotals(t, added).ItemID

	w := doRequest(server, http.MethodPut, fmt.Sprintf("/cart/items/%d", itemId), map[string]any{"quantity": 4}, "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	totals := decodeTotals(t, w)
	assert.False(t, totals.Removed)
	assert.Equal(t, 4, totals.TotalItems)
	assert.True(t, totals.TotalPrice.Equal(decimal.RequireFromString("40.00")))
}

func TestUpdateCartItemQuantityZeroRemovesLine(t *testing.T) {
	setupTestDB(t)
	server := newTestServer()
	category := seedCategory(t)
	product := seedProduct(t, category.ID, "Widget", "widget", "10.00", "", true)

	added := doRequest(server, http.MethodPost, "/cart/items", map[string]any{"productId": product.ID, "quantity": 2}, "")
	require.Equal(t, http.StatusCreated, added.Code)
	cookie := sessionCookie(t, added)
	itemId := decodeTotals(t, added).ItemID

	w := doRequest(server, http.MethodPut, fmt.Sprintf("/cart/items/%d", itemId), map[string]any{"quantity": 0}, "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	totals := decodeTotals(t, w)
	assert.True(t, totals.Removed)
	assert.Equal(t, 0, totals.TotalItems)

	// The line is gone, not stored with a zero quantity.
	var lineCount int64
	initializers.DB.Model(&models.CartItem{}).Count(&lineCount)
	assert.Equal(t, int64(0), lineCount)
}

func TestRemoveCartItem(t *testing.T) {
	setupTestDB(t)
	server := newTestServer()
	category := seedCategory(t)
	product := seedProduct(t, category.ID, "Widget", "widget", "10.00", "", true)

	added := doRequest(server, http.MethodPost, "/cart/items", map[string]any{"productId": product.ID}, "")
	require.Equal(t, http.StatusCreated, added.Code)
	cookie := sessionCookie(t, added)
	itemId := decodeTotals(t, added).ItemID

	w := doRequest(server, http.MethodDelete, fmt.Sprintf("/cart/items/%d", itemId), nil, "", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeTotals(t, w).TotalItems)

	again := doRequest(server, http.MethodDelete, fmt.Sprintf("/cart/items/%d", itemId), nil, "", cookie)
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestReAddProductAfterRemoval(t *testing.T) {
	setupTestDB(t)
	server := newTestServer()
	category := seedCategory(t)
	product := seedProduct(t, category.ID, "Widget", "widget", "10.00", "", true)

	added := doRequest(server, http.MethodPost, "/cart/items", map[string]any{"productId": product.ID}, "")
	require.Equal(t, http.StatusCreated, added.Code)
	cookie := sessionCookie(t, added)
	itemId := decodeTotals(t, added).ItemID

	removed := doRequest(server, http.MethodDelete, fmt.Sprintf("/cart/items/%d", itemId), nil, "", cookie)
	require.Equal(t, http.StatusOK, removed.Code)

	// The (cart, product) slot must be free again after removal.
	readded := doRequest(server, http.MethodPost, "/cart/items", map[string]any{"productId": product.ID, "quantity": 2}, "", cookie)
	require.Equal(t, http.StatusCreated, readded.Code)
	assert.Equal(t, 2, decodeTotals(t, readded).TotalItems)

	// Same guarantee when the line was dropped through a zero quantity.
	itemId = decodeTotals(t, readded).ItemID
	zeroed := doRequest(server, http.MethodPut, fmt.Sprintf("/cart/items/%d", itemId), map[string]any{"quantity": 0}, "", cookie)
	require.Equal(t, http.StatusOK, zeroed.Code)

	again := doRequest(server, http.MethodPost, "/cart/items", map[string]any{"productId": product.ID}, "", cookie)
	require.Equal(t, http.StatusCreated, again.Code)
	assert.Equal(t, 1, decodeTotals(t, again).TotalItems)

	var lineCount int64
	initializers.DB.Model(&models.CartItem{}).Count(&lineCount)
	assert.Equal(t, int64(1), lineCount)
}

func TestCartTotalsMatchDiscountedScenario(t *testing.T) {
	setupTestDB(t)
	server := newTestServer()
	category := seedCategory(t)
	productA := seedProduct(t, category.ID, "Product A", "product-a", "100.00", "90.00", true)
	productB := seedProduct(t, category.ID, "Product B", "product-b", "50.00", "", true)

	first := doRequest(server, http.MethodPost, "/cart/items", map[string]any{"productId": productA.ID, "quantity": 2}, "")
	require.Equal(t, http.StatusCreated, first.Code)
	cookie := sessionCookie(t, first)

	second := doRequest(server, http.MethodPost, "/cart/items", map[string]any{"productId": productB.ID}, "", cookie)
	require.Equal(t, http.StatusCreated, second.Code)

	w := doRequest(server, http.MethodGet, "/cart", nil, "", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	totals := decodeTotals(t, w)
	assert.True(t, totals.TotalPrice.Equal(decimal.RequireFromString("230.00")), "total price was %s", totals.TotalPrice)
	assert.Equal(t, 3, totals.TotalItems)
}
