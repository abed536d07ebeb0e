package controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nexusshop/nexus-api/initializers"
	"github.com/nexusshop/nexus-api/middlewares"
	"github.com/nexusshop/nexus-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer() *gin.Engine {
	gin.SetMode(gin.TestMode)
	server := gin.New()
	server.POST("/auth/signup", Signup)
	server.POST("/auth/login", Login)
	server.GET("/me", middlewares.Authenticate(), GetProfile)
	server.PUT("/me", middlewares.Authenticate(), UpdateProfile)
	return server
}

func signupBody(username string) map[string]any {
	return map[string]any{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "s3cret-password",
		"firstName": "Test",
		"lastName":  "User",
	}
}

func TestSignupCreatesUserWithProfile(t *testing.T) {
	setupTestDB(t)
	server := newAuthServer()
	t.Setenv("JWT_SECRET", "test-secret")

	w := doRequest(server, http.MethodPost, "/auth/signup", signupBody("alice"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	require.NoError(t, initializers.DB.Preload("Profile").Where("username = ?", "alice").First(&user).Error)
	assert.Equal(t, "user", user.Role)
	assert.NotEqual(t, "s3cret-password", user.Password, "password must be stored hashed")
	assert.Equal(t, user.ID, user.Profile.UserID, "signup must create the profile row")

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestSignupRejectsDuplicateUser(t *testing.T) {
	setupTestDB(t)
	server := newAuthServer()
	t.Setenv("JWT_SECRET", "test-secret")

	first := doRequest(server, http.MethodPost, "/auth/signup", signupBody("alice"), "")
	require.Equal(t, http.StatusCreated, first.Code)

	second := doRequest(server, http.MethodPost, "/auth/signup", signupBody("alice"), "")
	assert.Equal(t, http.StatusBadRequest, second.Code)
}

func TestLoginWithUsernameOrEmail(t *testing.T) {
	setupTestDB(t)
	server := newAuthServer()
	t.Setenv("JWT_SECRET", "test-secret")

	w := doRequest(server, http.MethodPost, "/auth/signup", signupBody("alice"), "")
	require.Equal(t, http.StatusCreated, w.Code)

	for _, identifier := range []string{"alice", "alice@example.com"} {
		login := doRequest(server, http.MethodPost, "/auth/login", map[string]any{
			"identifier": identifier,
			"password":   "s3cret-password",
		}, "")
		assert.Equal(t, http.StatusOK, login.Code, identifier)
	}

	wrong := doRequest(server, http.MethodPost, "/auth/login", map[string]any{
		"identifier": "alice",
		"password":   "wrong-password",
	}, "")
	assert.Equal(t, http.StatusBadRequest, wrong.Code)
}

func TestGetOrCreateProfileIsIdempotent(t *testing.T) {
	setupTestDB(t)
	user, _ := createTestUser(t, "alice")

	first, err := getOrCreateProfile(user.ID)
	require.NoError(t, err)
	second, err := getOrCreateProfile(user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	initializers.DB.Model(&models.UserProfile{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateProfilePersistsFields(t *testing.T) {
	setupTestDB(t)
	server := newAuthServer()
	_, token := createTestUser(t, "alice")

	w := doRequest(server, http.MethodPut, "/me", map[string]any{
		"firstName":  "Alicia",
		"lastName":   "Doe",
		"address":    "12 Rue de la Paix",
		"city":       "Paris",
		"postalCode": "75002",
		"country":    "France",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var profile models.UserProfile
	require.NoError(t, initializers.DB.Where("user_id = ?", 1).First(&profile).Error)
	assert.Equal(t, "Paris", profile.City)
	assert.Equal(t, "75002", profile.PostalCode)
}

func TestUpdateProfileLeavesOmittedFieldsAlone(t *testing.T) {
	setupTestDB(t)
	server := newAuthServer()
	user, token := createTestUser(t, "alice")

	full := doRequest(server, http.MethodPut, "/me", map[string]any{
		"firstName": "Alicia",
		"lastName":  "Doe",
		"phone":     "+33 1 23 45 67 89",
		"city":      "Paris",
	}, token)
	require.Equal(t, http.StatusOK, full.Code)

	// A follow-up update naming only the city must not blank the rest.
	partial := doRequest(server, http.MethodPut, "/me", map[string]any{"city": "Lyon"}, token)
	require.Equal(t, http.StatusOK, partial.Code)

	var updated models.User
	require.NoError(t, initializers.DB.First(&updated, user.ID).Error)
	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "Doe", updated.LastName)
	assert.Equal(t, "+33 1 23 45 67 89", updated.Phone)

	var profile models.UserProfile
	require.NoError(t, initializers.DB.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "Lyon", profile.City)
	assert.Equal(t, "+33 1 23 45 67 89", profile.Phone)
}
