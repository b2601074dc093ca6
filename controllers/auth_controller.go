package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/duclair/tontine-go/config"
	models "github.com/duclair/tontine-go/models"
	utils "github.com/duclair/tontine-go/utils"
)

// ---------------- REGISTER ----------------
func Register(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			FirstName string `json:"first_name" binding:"required"`
			LastName  string `json:"last_name" binding:"required"`
			Email     string `json:"email" binding:"required,email"`
			Phone     string `json:"phone"`
			Address   string `json:"address"`
			Role      string `json:"role"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		role := input.Role
		if role != "initiator" {
			role = "participant"
		}

		col := cfg.Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		email := strings.ToLower(strings.TrimSpace(input.Email))
		count, err := col.CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check email"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}

		now := time.Now()
		user := models.User{
			ID:         primitive.NewObjectID(),
			FirstName:  input.FirstName,
			LastName:   input.LastName,
			Email:      email,
			Phone:      input.Phone,
			Address:    input.Address,
			Role:       role,
			AccessCode: utils.GenerateAccessCode(),
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if _, err := col.InsertOne(ctx, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
			return
		}

		// The access code is shown exactly once, at registration.
		c.JSON(http.StatusCreated, gin.H{
			"user":        user,
			"access_code": user.AccessCode,
		})
	}
}

// ---------------- LOGIN ----------------
func Login(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email      string `json:"email" binding:"required,email"`
			AccessCode string `json:"access_code" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		err := cfg.Collection("users").FindOne(ctx, bson.M{
			"email":       strings.ToLower(strings.TrimSpace(input.Email)),
			"access_code": input.AccessCode,
		}).Decode(&user)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or access code"})
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  user.ID.Hex(),
			"role": user.Role,
			"iat":  time.Now().Unix(),
			"exp":  time.Now().Add(24 * time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not sign token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": signed,
			"user":  user,
		})
	}
}
