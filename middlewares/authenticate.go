package middlewares

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func setUserContext(ctx *gin.Context, claims jwt.MapClaims) {
	ctx.Set("user", claims)
	if id, ok := claims["user_id"].(float64); ok {
		ctx.Set("userId", uint(id))
	}
}

// Authenticate requires a valid Bearer token and stores its claims in the
// request context.
func Authenticate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization token required"})
			return
		}

		claims, err := parseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		setUserContext(ctx, claims)
		ctx.Next()
	}
}

// OptionalAuthenticate stores claims when a valid token is present but lets
// anonymous requests through. Cart routes use it so visitors can shop
// before signing in.
func OptionalAuthenticate() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			if claims, err := parseToken(strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
				setUserContext(ctx, claims)
			}
		}
		ctx.Next()
	}
}
