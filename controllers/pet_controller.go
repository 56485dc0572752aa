package controllers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petcode/petcode-api/config"
	"github.com/petcode/petcode-api/models"
	"github.com/petcode/petcode-api/services"
	"github.com/petcode/petcode-api/utils"
	"gorm.io/gorm"
)

// CreatePetRequest represents the multipart form for registering a pet
type CreatePetRequest struct {
	PetName      string `form:"pet_name" binding:"required"`
	Breed        string `form:"breed"`
	Age          string `form:"age"`
	Vaccinations string `form:"vaccinations"`
	Observations string `form:"observations"`
}

// slugMaxAttempts bounds the collision-retry loop on slug generation
const slugMaxAttempts = 5

// generateUniqueSlug draws random slugs until one is not already taken
func generateUniqueSlug(db *gorm.DB) (string, error) {
	for attempt := 0; attempt < slugMaxAttempts; attempt++ {
		slug := utils.GenerateProfileSlug()

		var count int64
		if err := db.Model(&models.PetProfile{}).
			Where("profile_slug = ?", slug).
			Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check slug uniqueness: %w", err)
		}
		if count == 0 {
			return slug, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique profile slug after %d attempts", slugMaxAttempts)
}

// uploadPhotoBestEffort uploads a pet photo if one was attached. Photo
// failures never abort the enclosing workflow: the profile is created or
// updated without a photo instead.
func uploadPhotoBestEffort(c *gin.Context) *services.ImageUploadResult {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		// No photo attached
		return nil
	}

	imageService := services.GetImageService()
	if imageService == nil {
		log.Printf("Image service not configured, skipping photo upload")
		return nil
	}

	result, err := imageService.UploadImage(fileHeader)
	if err != nil {
		log.Printf("Photo upload failed, continuing without photo: %v", err)
		return nil
	}

	return result
}

// CreatePet handles POST /api/v1/pets - registers a pet and creates its
// QR fulfillment order in a single transaction
func CreatePet(c *gin.Context) {
	client, ok := loadCurrentClient(c)
	if !ok {
		return
	}

	var req CreatePetRequest
	if err := c.ShouldBind(&req); err != nil {
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

	// The order snapshot copies the client's address, so the client must
	// have completed their profile before registering a pet
	if !client.HasCompleteAddress() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INCOMPLETE_PROFILE",
				"message": "Complete your shipping address before registering a pet",
			},
		})
		return
	}

	// Photo upload is best-effort; a failed upload leaves the photo fields empty
	photo := uploadPhotoBestEffort(c)

	db := config.GetDB()
	slug, err := generateUniqueSlug(db)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to generate profile URL",
			},
		})
		return
	}

	pet := models.PetProfile{
		ClientID:     client.ID,
		PetName:      req.PetName,
		Breed:        req.Breed,
		Age:          req.Age,
		Vaccinations: req.Vaccinations,
		Observations: req.Observations,
		ProfileSlug:  slug,
		IsActive:     true,
		IsLost:       false,
		OwnerMessage: "",
	}
	if photo != nil {
		pet.Photo = photo.URL
		pet.PhotoOptimized = photo.OptimizedURL
	}

	var order models.QROrder

	// The profile and its order must appear atomically: either both
	// records exist afterwards or neither does
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&pet).Error; err != nil {
			return err
		}

		order = models.QROrder{
			ClientID:         client.ID,
			PetProfileID:     pet.ID,
			ClientEmail:      client.Email,
			ClientFirstName:  client.FirstName,
			ClientLastName:   client.LastName,
			ClientPhone:      client.Phone,
			ClientAddress:    client.Address,
			ClientCity:       client.City,
			ClientPostalCode: client.PostalCode,
			ClientCountry:    client.Country,
			PetName:          pet.PetName,
			ProfileSlug:      pet.ProfileSlug,
			Status:           models.OrderStatusPending,
		}

		return tx.Create(&order).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to register pet",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"pet":   pet,
			"order": order,
		},
	})
}

// GetMyPets handles GET /api/v1/pets - lists the caller's pets, newest first
func GetMyPets(c *gin.Context) {
	client, ok := loadCurrentClient(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var pets []models.PetProfile
	if err := db.Where("client_id = ?", client.ID).
		Order("created_at DESC").
		Find(&pets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load pets",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    pets,
	})
}

// UpdatePet handles PUT /api/v1/pets/:id - applies a partial update to a
// pet profile. A name change is propagated to every QR order referencing
// the pet within the same transaction; re-submitting the current name is
// a no-op for the orders.
func UpdatePet(c *gin.Context) {
	client, ok := loadCurrentClient(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var pet models.PetProfile
	if err := db.Where("id = ? AND client_id = ?", c.Param("id"), client.ID).
		First(&pet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PET_NOT_FOUND",
					"message": "Pet profile not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load pet profile",
			},
		})
		return
	}

	// Multipart partial update: only fields present in the form are touched
	updates := make(map[string]interface{})
	if v, present := c.GetPostForm("pet_name"); present {
		if v == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Pet name cannot be empty",
				},
			})
			return
		}
		updates["pet_name"] = v
	}
	if v, present := c.GetPostForm("breed"); present {
		updates["breed"] = v
	}
	if v, present := c.GetPostForm("age"); present {
		updates["age"] = v
	}
	if v, present := c.GetPostForm("vaccinations"); present {
		updates["vaccinations"] = v
	}
	if v, present := c.GetPostForm("observations"); present {
		updates["observations"] = v
	}
	if v, present := c.GetPostForm("owner_message"); present {
		updates["owner_message"] = v
	}

	// Photo replacement is best-effort: a failed upload keeps the prior URLs
	if photo := uploadPhotoBestEffort(c); photo != nil {
		updates["photo"] = photo.URL
		updates["photo_optimized"] = photo.OptimizedURL
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    pet,
		})
		return
	}

	// Orders carry a denormalized copy of the name; keep it in sync when
	// the name actually changes
	newName, nameChanged := updates["pet_name"].(string)
	nameChanged = nameChanged && newName != pet.PetName

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&pet).Updates(updates).Error; err != nil {
			return err
		}

		if nameChanged {
			if err := tx.Model(&models.QROrder{}).
				Where("pet_profile_id = ?", pet.ID).
				Update("pet_name", newName).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update pet profile",
			},
		})
		return
	}

	if err := db.First(&pet, pet.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load updated pet profile",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    pet,
	})
}

// ToggleLostRequest represents the request body for the lost/found toggle
type ToggleLostRequest struct {
	IsLost *bool `json:"is_lost" binding:"required"`
}

// ToggleLostStatus handles PATCH /api/v1/pets/:id/lost - flips the lost
// flag. The owner message is deliberately untouched so it survives
// found/lost round trips, and there are no guards: marking a pet lost
// must never be blocked during an emergency.
func ToggleLostStatus(c *gin.Context) {
	client, ok := loadCurrentClient(c)
	if !ok {
		return
	}

	var req ToggleLostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "is_lost is required",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var pet models.PetProfile
	if err := db.Where("id = ? AND client_id = ?", c.Param("id"), client.ID).
		First(&pet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PET_NOT_FOUND",
					"message": "Pet profile not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load pet profile",
			},
		})
		return
	}

	if err := db.Model(&pet).Update("is_lost", *req.IsLost).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update lost status",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    pet,
	})
}
