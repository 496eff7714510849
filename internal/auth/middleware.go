package auth

import (
	"net/http"
	"os"
	"strings"
	"time"

	"schedule_api/internal/models"
	"schedule_api/internal/response"
	"schedule_api/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	AccessSecret  = []byte(os.Getenv("JWT_ACCESS_SECRET"))
	RefreshSecret = []byte(os.Getenv("JWT_REFRESH_SECRET"))
)

// GenerateToken выписывает JWT с user_id на заданный срок.
func GenerateToken(userID uint, duration time.Duration, secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(duration).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// AuthMiddleware проверяет валидность access токена
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, response.Error(
				response.CodeAccess, "Требуется авторизация"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return AccessSecret, nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, response.Error(
				response.CodeAuthentication, "Неверный или просроченный токен"))
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.Error(
				response.CodeAuthentication, "Невозможно прочитать claims токена"))
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.Error(
				response.CodeAuthentication, "Невозможно извлечь user_id"))
			c.Abort()
			return
		}

		c.Set("userID", uint(userID))
		c.Next()
	}
}

// AdminRequired пропускает только администраторов. Должен стоять после AuthMiddleware.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")

		var user models.User
		if err := storage.DB.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, response.Error(
				response.CodeAuthentication, "Пользователь не найден"))
			c.Abort()
			return
		}

		if !user.IsAdmin {
			c.JSON(http.StatusForbidden, response.Error(
				response.CodeAccess, "Требуется роль администратора"))
			c.Abort()
			return
		}

		c.Set("isAdmin", true)
		c.Next()
	}
}

// IsAdmin сообщает, является ли текущий пользователь запроса администратором.
// Используется для проекции отладочных полей в ответах.
func IsAdmin(c *gin.Context) bool {
	if c.GetBool("isAdmin") {
		return true
	}
	userID := c.GetUint("userID")
	if userID == 0 {
		return false
	}
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return false
	}
	if user.IsAdmin {
		c.Set("isAdmin", true)
	}
	return user.IsAdmin
}

// OptionalAuth извлекает user_id из токена, если он передан, но не требует его.
// Публичные GET-запросы остаются доступны без авторизации.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return AccessSecret, nil
		})
		if err == nil && token.Valid {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if userID, ok := claims["user_id"].(float64); ok {
					c.Set("userID", uint(userID))
				}
			}
		}
		c.Next()
	}
}
