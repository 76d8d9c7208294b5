package controllers

import (
	"net/http"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/edu-safe/api-go/config"
	"github.com/edu-safe/api-go/models"
	"github.com/edu-safe/api-go/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB           *gorm.DB
	GoogleConfig *config.GoogleConfig
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{
		DB:           db,
		GoogleConfig: config.NewGoogleConfig(),
	}
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

func validateUsername(username string) string {
	if len(username) < 3 {
		return "Username must be at least 3 characters long"
	}
	if len(username) > 30 {
		return "Username cannot exceed 30 characters"
	}
	if !usernamePattern.MatchString(username) {
		return "Username must start with a letter and contain only letters, numbers, and underscores"
	}
	return ""
}

func (ac *AuthController) signTokens(user *models.User) (string, string, error) {
	accessTokenBase := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(time.Hour * 24 * 7).Unix(),
	})

	refreshTokenBase := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(time.Hour * 24 * 30).Unix(),
	})

	secret := []byte(os.Getenv("JWT_SECRET"))

	accessToken, err := accessTokenBase.SignedString(secret)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := refreshTokenBase.SignedString(secret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"omitempty,oneof=student teacher"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	if msg := validateUsername(input.Username); msg != "" {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: msg})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Could not hash password"})
		return
	}

	if input.Role == "" {
		input.Role = models.RoleStudent
	}

	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashedPassword),
		Role:     input.Role,
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: "Username or email already exists"})
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Message: "User registered successfully",
		Data: gin.H{"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		}},
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	accessToken, refreshToken, err := ac.signTokens(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Could not generate token"})
		return
	}

	ac.DB.Create(&models.RefreshToken{
		UserID:         user.ID,
		Token:          refreshToken,
		ExpirationDate: time.Now().Add(time.Hour * 24 * 30),
	})

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"token_type":    "Bearer",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          gin.H{"id": user.ID, "email": user.Email, "username": user.Username, "role": user.Role, "points": user.Points},
	})
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	var refreshToken models.RefreshToken
	if err := ac.DB.Where("token = ?", input.RefreshToken).First(&refreshToken).Error; err != nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "Invalid refresh token"})
		return
	}

	if time.Now().After(refreshToken.ExpirationDate) {
		ac.DB.Delete(&refreshToken)
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "Refresh token expired"})
		return
	}

	var user models.User
	if err := ac.DB.First(&user, "id = ?", refreshToken.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found"})
		return
	}

	accessToken, newRefreshToken, err := ac.signTokens(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Could not generate token"})
		return
	}

	refreshToken.Token = newRefreshToken
	refreshToken.ExpirationDate = time.Now().Add(time.Hour * 24 * 30)
	ac.DB.Save(&refreshToken)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"token_type":    "Bearer",
		"access_token":  accessToken,
		"refresh_token": newRefreshToken,
		"user":          gin.H{"id": user.ID, "email": user.Email, "username": user.Username, "role": user.Role},
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	var refreshToken models.RefreshToken
	result := ac.DB.Where("token = ?", input.RefreshToken).Delete(&refreshToken)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Failed to logout"})
		return
	}

	// unknown token still logs out cleanly
	c.JSON(http.StatusOK, StandardResponse{Success: true, Message: "Logged out successfully"})
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	claims := utils.GetUser(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "User not found in context"})
		return
	}

	var user models.User
	if err := ac.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, StandardResponse{Success: false, Message: "User not found"})
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    gin.H{"user": user},
	})
}

// GoogleLogin signs a user in with a Google OAuth code, id_token, or access
// token, provisioning a student account on first sign-in.
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	if ac.GoogleConfig == nil {
		c.JSON(http.StatusServiceUnavailable, StandardResponse{Success: false, Message: "Google sign-in is not configured"})
		return
	}

	var input struct {
		IDToken     string `json:"id_token"`
		AccessToken string `json:"access_token"`
		Code        string `json:"code"`
		RedirectURI string `json:"redirect_uri"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: err.Error()})
		return
	}

	var userInfo *config.GoogleUserInfo
	var err error

	switch {
	case input.Code != "" && input.RedirectURI != "":
		token, exchangeErr := ac.GoogleConfig.ExchangeCode(c.Request.Context(), input.Code)
		if exchangeErr != nil {
			c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "Failed to exchange code for token"})
			return
		}
		userInfo, err = ac.GoogleConfig.GetUserInfo(token.AccessToken)
	case input.IDToken != "":
		userInfo, err = ac.GoogleConfig.VerifyIDToken(input.IDToken)
	case input.AccessToken != "":
		userInfo, err = ac.GoogleConfig.GetUserInfo(input.AccessToken)
	default:
		c.JSON(http.StatusBadRequest, StandardResponse{Success: false, Message: "Either code with redirect_uri, id_token, or access_token is required"})
		return
	}

	if err != nil {
		c.JSON(http.StatusUnauthorized, StandardResponse{Success: false, Message: "Invalid Google token"})
		return
	}

	var user models.User
	if ac.DB.Where("email = ?", userInfo.Email).First(&user).Error != nil {
		// first sign-in: provision a student account with a unique username
		username := userInfo.Email
		counter := 1
		for {
			var existing models.User
			if ac.DB.Where("username = ?", username).First(&existing).Error != nil {
				break
			}
			username = userInfo.Email + strconv.Itoa(counter)
			counter++
		}

		user = models.User{
			Username: username,
			Email:    userInfo.Email,
			Password: models.NewID(), // placeholder, never matches a login attempt
			Role:     models.RoleStudent,
		}

		if err := ac.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Failed to create user"})
			return
		}
	}

	accessToken, refreshToken, err := ac.signTokens(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, StandardResponse{Success: false, Message: "Could not generate token"})
		return
	}

	ac.DB.Create(&models.RefreshToken{
		UserID:         user.ID,
		Token:          refreshToken,
		ExpirationDate: time.Now().Add(time.Hour * 24 * 30),
	})

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"token_type":    "Bearer",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          gin.H{"id": user.ID, "email": user.Email, "username": user.Username, "role": user.Role},
	})
}
