package controllers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/nexusshop/nexus-api/initializers"
	"github.com/nexusshop/nexus-api/models"
	"github.com/nexusshop/nexus-api/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// Default cost for bcrypt password hashing
	bcryptCost = 10

	// Standard response messages
	msgInvalidInput          = "invalid input"
	msgUserAlreadyExists     = "user with this email or username already exists"
	msgFailedToHashPassword  = "failed to hash password"
	msgInvalidCredentials    = "invalid username or password"
	msgAccountDisabled       = "this account has been disabled"
	msgFailedToGenerateToken = "failed to generate token"
	msgInternalServerError   = "Internal server error"
	msgResetLinkSent         = "Check your email for a password reset link."
	msgUserNotFound          = "user with this email does not exist"
	msgResetTokenError       = "There was an error trying to generate password reset link. Try again later."
	msgUnableToSaveToken     = "unable to save reset token."
	msgUnableToResetPassword = "unable to reset password"
	msgInvalidResetLink      = "Invalid or expired reset link"
)

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func generateJWT(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"username": user.Username,
		"role":     user.Role,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(time.Hour * 24 * 30).Unix(),
	})

	jwtSecret := os.Getenv("JWT_SECRET")
	return token.SignedString([]byte(jwtSecret))
}

func checkUserExists(email, username string) (bool, error) {
	var existingUser models.User
	result := initializers.DB.Where("email = ? OR username = ?", email, username).Find(&existingUser)
	return result.RowsAffected > 0, result.Error
}

func findUserByIdentifier(identifier string) (models.User, error) {
	var user models.User
	result := initializers.DB.Where("email = ? OR username = ?", identifier, identifier).First(&user)
	return user, result.Error
}

func findUserByEmail(email string) (models.User, error) {
	var user models.User
	result := initializers.DB.Where("email = ?", email).First(&user)
	return user, result.Error
}

// currentUserID reads the authenticated user id stored by the middleware.
func currentUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get("userId")
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// Send a password reset email
func sendPasswordResetEmail(user models.User, resetToken string) error {
	emailData := utils.EmailData{
		Name:      user.Username,
		Message:   "You requested a password reset. Click the button below to reset your password.",
		ActionURL: os.Getenv("FRONTEND_URL") + "/auth/reset-password?token=" + url.QueryEscape(resetToken),
		LogoURL:   "https://www.nexusshop.store/images/logo.jpg",
	}

	templatePath := filepath.Join("templates", "reset_password.html")
	return utils.SendEmail(user.Email, "Nexus Shop Password Reset", emailData, templatePath)
}

// Signup handles user registration. The user row and its profile row are
// created in one transaction so a failed profile insert never leaves a
// profileless user behind.
func Signup(ctx *gin.Context) {
	var signUpData struct {
		Username               string `json:"username" binding:"required"`
		Email                  string `json:"email" binding:"required,email"`
		Password               string `json:"password" binding:"required,min=8"`
		FirstName              string `json:"firstName"`
		LastName               string `json:"lastName"`
		Phone                  string `json:"phone"`
		NewsletterSubscription *bool  `json:"newsletterSubscription"`
	}
	if err := ctx.ShouldBindJSON(&signUpData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	exists, err := checkUserExists(signUpData.Email, signUpData.Username)
	if err != nil {
		log.Println("Database error during user check:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	if exists {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUserAlreadyExists)
		return
	}

	hashedPassword, err := hashPassword(signUpData.Password)
	if err != nil {
		log.Println("Password hashing error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToHashPassword)
		return
	}

	newsletter := true
	if signUpData.NewsletterSubscription != nil {
		newsletter = *signUpData.NewsletterSubscription
	}

	user := models.User{
		Username:  signUpData.Username,
		Email:     signUpData.Email,
		Password:  hashedPassword,
		FirstName: signUpData.FirstName,
		LastName:  signUpData.LastName,
		Phone:     signUpData.Phone,
		Role:      "user",
		IsActive:  true,
		Profile: models.UserProfile{
			Phone:                  signUpData.Phone,
			NewsletterSubscription: newsletter,
		},
	}

	if err := initializers.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	}); err != nil {
		log.Println("User creation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	tokenString, err := generateJWT(user)
	if err != nil {
		log.Println("JWT generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message": "Account created successfully.",
		"token":   tokenString,
	})
}

// Login handles user authentication
func Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	user, err := findUserByIdentifier(loginData.Identifier)
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	if err := comparePasswords(user.Password, loginData.Password); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	if !user.IsActive {
		sendErrorResponse(ctx, http.StatusForbidden, msgAccountDisabled)
		return
	}

	tokenString, err := generateJWT(user)
	if err != nil {
		log.Println("JWT generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"token": tokenString})
}

// GetProfile returns the caller's profile, recent orders and total spent on
// delivered orders. The profile row is created on first access if missing.
func GetProfile(ctx *gin.Context) {
	userId, ok := currentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var user models.User
	if err := initializers.DB.First(&user, userId).Error; err != nil {
		sendErrorResponse(ctx, http.StatusNotFound, "User not found")
		return
	}

	profile, err := getOrCreateProfile(userId)
	if err != nil {
		log.Println("Profile lookup error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	var recentOrders []models.Order
	if err := initializers.DB.Preload("Items").
		Where("user_id = ?", userId).
		Order("created_at desc").
		Limit(5).
		Find(&recentOrders).Error; err != nil {
		log.Println("Order lookup error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	var delivered []models.Order
	if err := initializers.DB.
		Where("user_id = ? AND status = ?", userId, models.OrderStatusDelivered).
		Find(&delivered).Error; err != nil {
		log.Println("Order lookup error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	totalSpent := decimal.Zero
	for _, order := range delivered {
		totalSpent = totalSpent.Add(order.TotalAmount)
	}

	user.Password = ""
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"user":         user,
		"profile":      profile,
		"recentOrders": recentOrders,
		"totalSpent":   totalSpent,
	})
}

// getOrCreateProfile is a total operation: it always returns a profile row
// for the user, creating an empty one when none exists yet.
func getOrCreateProfile(userId uint) (models.UserProfile, error) {
	var profile models.UserProfile
	err := initializers.DB.
		Where(models.UserProfile{UserID: userId}).
		FirstOrCreate(&profile).Error
	return profile, err
}

// UpdateProfile updates the caller's user names and profile fields together.
func UpdateProfile(ctx *gin.Context) {
	userId, ok := currentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	// Pointer fields so omitted keys leave the stored values alone.
	var profileData struct {
		FirstName              *string `json:"firstName"`
		LastName               *string `json:"lastName"`
		Phone                  *string `json:"phone"`
		Address                *string `json:"address"`
		City                   *string `json:"city"`
		PostalCode             *string `json:"postalCode"`
		Country                *string `json:"country"`
		NewsletterSubscription *bool   `json:"newsletterSubscription"`
	}
	if err := ctx.ShouldBindJSON(&profileData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	profile, err := getOrCreateProfile(userId)
	if err != nil {
		log.Println("Profile lookup error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	userUpdates := map[string]any{}
	if profileData.FirstName != nil {
		userUpdates["first_name"] = *profileData.FirstName
	}
	if profileData.LastName != nil {
		userUpdates["last_name"] = *profileData.LastName
	}
	if profileData.Phone != nil {
		userUpdates["phone"] = *profileData.Phone
	}

	profileUpdates := map[string]any{}
	if profileData.Phone != nil {
		profileUpdates["phone"] = *profileData.Phone
	}
	if profileData.Address != nil {
		profileUpdates["address"] = *profileData.Address
	}
	if profileData.City != nil {
		profileUpdates["city"] = *profileData.City
	}
	if profileData.PostalCode != nil {
		profileUpdates["postal_code"] = *profileData.PostalCode
	}
	if profileData.Country != nil {
		profileUpdates["country"] = *profileData.Country
	}
	if profileData.NewsletterSubscription != nil {
		profileUpdates["newsletter_subscription"] = *profileData.NewsletterSubscription
	}

	if err := initializers.DB.Transaction(func(tx *gorm.DB) error {
		if len(userUpdates) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", userId).Updates(userUpdates).Error; err != nil {
				return err
			}
		}
		if len(profileUpdates) > 0 {
			return tx.Model(&profile).Updates(profileUpdates).Error
		}
		return nil
	}); err != nil {
		log.Println("Profile update error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Profile updated successfully."})
}

// SendPasswordResetLink sends a password reset link to the user's email
func SendPasswordResetLink(ctx *gin.Context) {
	type ForgotPasswordBody struct {
		Email string `json:"email" binding:"required,email"`
	}

	var forgotPasswordData ForgotPasswordBody
	if err := ctx.ShouldBindJSON(&forgotPasswordData); err != nil {
		log.Println("Bind error:", err)
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	user, err := findUserByEmail(forgotPasswordData.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusBadRequest, msgUserNotFound)
		} else {
			log.Println("Database error:", err)
			sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		}
		return
	}

	passwordResetToken, err := utils.GenerateCode(16)
	if err != nil {
		log.Println("Reset token generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgResetTokenError)
		return
	}

	if result := initializers.DB.Model(&models.User{}).
		Where("email = ?", forgotPasswordData.Email).
		Update("password_reset_token", passwordResetToken); result.Error != nil {

		log.Println("Error saving reset token:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgUnableToSaveToken)
		return
	}

	if err := sendPasswordResetEmail(user, passwordResetToken); err != nil {
		log.Println("Error sending password reset email:", err)
	} else {
		log.Println("Password reset email sent successfully to:", forgotPasswordData.Email)
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgResetLinkSent})
}

// ResetPassword resets a user's password using a reset token
func ResetPassword(ctx *gin.Context) {
	type ResetPasswordInfo struct {
		Password string `json:"password" binding:"required,min=8"`
	}

	var resetPasswordData ResetPasswordInfo
	if err := ctx.ShouldBindJSON(&resetPasswordData); err != nil {
		log.Println("Invalid reset password data:", err)
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	hashedPassword, err := hashPassword(resetPasswordData.Password)
	if err != nil {
		log.Println("Password hashing error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToHashPassword)
		return
	}

	resetToken := ctx.Param("resetToken")
	result := initializers.DB.Model(&models.User{}).
		Where("password_reset_token = ? AND password_reset_token <> ''", resetToken).
		Updates(map[string]any{
			"password":             hashedPassword,
			"password_reset_token": "",
		})

	if result.Error != nil {
		log.Println("Error resetting password:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgUnableToResetPassword)
		return
	}

	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidResetLink)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Password reset successful"})
}
