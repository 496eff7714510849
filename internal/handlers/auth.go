package handlers

import (
	"net/http"
	"time"

	"schedule_api/internal/auth"
	"schedule_api/internal/models"
	"schedule_api/internal/response"
	"schedule_api/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Surname  string `json:"surname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary		Регистрация пользователя
// @Description	Регистрация нового пользователя
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			user	body		RegisterRequest			true	"Данные пользователя"
// @Success		201		{object}	response.ResultResponse	"Успешная регистрация"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации или пользователь уже существует"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера"
// @Router			/auth/register [post]
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	var existingUser models.User
	if err := storage.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Пользователь с таким email уже существует"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при хешировании пароля"))
		return
	}

	user := models.User{
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	}

	if err := storage.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при создании пользователя"))
		return
	}

	c.JSON(http.StatusCreated, response.Result())
}

// @Summary		Авторизация пользователя
// @Description	Авторизация пользователя и получение токенов
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			user	body		LoginRequest			true	"Данные для авторизации"
// @Success		200		{object}	response.TokenResponse	"Успешная авторизация"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации данных"
// @Failure		401		{object}	response.ErrorResponse	"Неверные учетные данные"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера"
// @Router			/auth/login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	var user models.User
	if err := storage.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(
			response.CodeAuthentication, "Неверный email или пароль"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(
			response.CodeAuthentication, "Неверный email или пароль"))
		return
	}

	accessToken, err := auth.GenerateToken(user.ID, time.Minute*15, auth.AccessSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при генерации access токена"))
		return
	}

	refreshToken, err := auth.GenerateToken(user.ID, time.Hour*24*7, auth.RefreshSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при генерации refresh токена"))
		return
	}

	c.JSON(http.StatusOK, response.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// @Summary		Обновление access токена
// @Description	Обновление access токена с помощью refresh токена
// @Tags			auth
// @Accept			json
// @Produce		json
// @Param			refresh_token	body		RefreshTokenRequest		true	"Refresh токен"
// @Success		200				{object}	response.TokenResponse	"Успешное обновление access токена"
// @Failure		400				{object}	response.ErrorResponse	"Ошибка валидации данных"
// @Failure		401				{object}	response.ErrorResponse	"Неверный или просроченный refresh токен"
// @Failure		500				{object}	response.ErrorResponse	"Ошибка сервера"
// @Router			/auth/refresh [post]
func RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(
			response.CodeValidation, "Ошибка валидации данных: "+err.Error()))
		return
	}

	token, err := jwt.Parse(req.RefreshToken, func(token *jwt.Token) (interface{}, error) {
		return auth.RefreshSecret, nil
	})
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, response.Error(
			response.CodeAuthentication, "Неверный или просроченный refresh токен"))
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(
			response.CodeAuthentication, "Неверный или просроченный refresh токен"))
		return
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(
			response.CodeAuthentication, "Неверный или просроченный refresh токен"))
		return
	}

	userID := uint(userIDFloat)

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(
			response.CodeAuthentication, "Пользователь не найден"))
		return
	}

	newAccessToken, err := auth.GenerateToken(user.ID, time.Minute*15, auth.AccessSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при генерации access токена"))
		return
	}

	newRefreshToken, err := auth.GenerateToken(userID, time.Hour*24*7, auth.RefreshSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(
			response.CodeUnknown, "Ошибка при генерации нового refresh токена"))
		return
	}

	c.JSON(http.StatusOK, response.TokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
	})
}
