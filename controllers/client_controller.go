package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/petcode/petcode-api/config"
	"github.com/petcode/petcode-api/middleware"
	"github.com/petcode/petcode-api/models"
	"github.com/petcode/petcode-api/services"
	"gorm.io/gorm"
)

// UpdateClientRequest represents the request body for updating a client profile
type UpdateClientRequest struct {
	FirstName  string `json:"first_name" binding:"omitempty"`
	LastName   string `json:"last_name" binding:"omitempty"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone" binding:"omitempty"`
	Address    string `json:"address" binding:"omitempty"`
	City       string `json:"city" binding:"omitempty"`
	PostalCode string `json:"postal_code" binding:"omitempty"`
	Country    string `json:"country" binding:"omitempty"`
}

// loadCurrentClient resolves the authenticated caller to their Client
// record. On failure it writes the error response and returns false.
func loadCurrentClient(c *gin.Context) (*models.Client, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var client models.Client
	if err := db.Where("auth0_id = ?", auth0ID).First(&client).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CLIENT_NOT_FOUND",
					"message": "Client profile not found. Please fetch /clients/me first.",
				},
			})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load client profile",
			},
		})
		return nil, false
	}

	return &client, true
}

// isDuplicateKeyError detects unique-constraint violations across
// PostgreSQL and SQLite
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}

// GetMyClient handles GET /api/v1/clients/me - returns the caller's
// client record, creating it from Auth0 userinfo on first sign-in
func GetMyClient(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var client models.Client
	err = db.Where("auth0_id = ?", auth0ID).First(&client).Error
	if err == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    client,
		})
		return
	}
	if err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load client profile",
			},
		})
		return
	}

	// First sign-in: bootstrap the client record from Auth0's /userinfo
	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_TOKEN",
				"message": "Access token not found",
			},
		})
		return
	}

	cfg := config.GetConfig()
	auth0Service := services.NewAuth0Service(cfg)
	userInfo, err := auth0Service.GetUserInfo(accessToken)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "AUTH0_ERROR",
				"message": "Failed to fetch user information from Auth0",
			},
		})
		return
	}

	if userInfo.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_EMAIL",
				"message": "Email not provided by Auth0",
			},
		})
		return
	}

	firstName := userInfo.GivenName
	lastName := userInfo.FamilyName
	if firstName == "" && lastName == "" {
		firstName = userInfo.Name
	}

	client = models.Client{
		Auth0ID:   auth0ID,
		Email:     userInfo.Email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      "user",
	}

	if err := db.Create(&client).Error; err != nil {
		if isDuplicateKeyError(err) {
			// A concurrent first request won the race; return its record
			if err := db.Where("auth0_id = ?", auth0ID).First(&client).Error; err == nil {
				c.JSON(http.StatusOK, gin.H{
					"success": true,
					"data":    client,
				})
				return
			}
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "CLIENT_EXISTS",
					"message": "A client with this Auth0 ID or email already exists",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create client profile",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    client,
	})
}

// UpdateMyClient handles PUT /api/v1/clients/me - updates the caller's profile
func UpdateMyClient(c *gin.Context) {
	client, ok := loadCurrentClient(c)
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	// Update fields if provided. Role is intentionally not settable here.
	updates := make(map[string]interface{})
	if req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.City != "" {
		updates["city"] = req.City
	}
	if req.PostalCode != "" {
		updates["postal_code"] = req.PostalCode
	}
	if req.Country != "" {
		updates["country"] = req.Country
	}

	// If no fields to update, return current client
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    client,
		})
		return
	}

	db := config.GetDB()
	if err := db.Model(client).Updates(updates).Error; err != nil {
		if isDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "EMAIL_EXISTS",
					"message": "A client with this email already exists",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update client profile",
			},
		})
		return
	}

	// Fetch updated client to return
	if err := db.First(client, client.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch updated profile",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    client,
	})
}
