package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petcode/petcode-api/config"
	"github.com/petcode/petcode-api/models"
	"gorm.io/gorm"
)

// PublicProfileResponse is the read-only projection served on a pet's
// public emergency page. The slug is the only credential gating access,
// so the projection is limited to what a finder needs: it never carries
// the owner's email, address or any internal identifier.
type PublicProfileResponse struct {
	PetName          string `json:"pet_name"`
	Breed            string `json:"breed"`
	Age              string `json:"age"`
	Photo            string `json:"photo"`
	ContactPhone     string `json:"contact_phone"`
	OwnerName        string `json:"owner_name"`
	Vaccinations     string `json:"vaccinations"`
	Observations     string `json:"observations"`
	IsLost           bool   `json:"is_lost"`
	EmergencyMessage string `json:"emergency_message"`
	OwnerMessage     string `json:"owner_message"`
}

// BuildPublicProfile assembles the projection from a pet and its owner.
// The optimized photo is preferred; the emergency banner and the owner
// message appear only while the pet is flagged lost.
func BuildPublicProfile(pet *models.PetProfile, owner *models.Client) PublicProfileResponse {
	photo := pet.PhotoOptimized
	if photo == "" {
		photo = pet.Photo
	}

	resp := PublicProfileResponse{
		PetName:      pet.PetName,
		Breed:        pet.Breed,
		Age:          pet.Age,
		Photo:        photo,
		ContactPhone: owner.Phone,
		OwnerName:    owner.FullName(),
		Vaccinations: pet.Vaccinations,
		Observations: pet.Observations,
		IsLost:       pet.IsLost,
	}

	if pet.IsLost {
		resp.EmergencyMessage = fmt.Sprintf("¡%s se perdió! Por favor contacta inmediatamente.", pet.PetName)
		resp.OwnerMessage = pet.OwnerMessage
	}

	return resp
}

// GetPublicProfile handles GET /api/v1/public/profiles/:slug - the
// unauthenticated emergency page behind a printed QR code. An unknown
// slug is a distinct not-found state, never conflated with a store error.
func GetPublicProfile(c *gin.Context) {
	slug := c.Param("slug")

	db := config.GetDB()
	var pet models.PetProfile
	if err := db.Where("profile_slug = ?", slug).First(&pet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PROFILE_NOT_FOUND",
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

	var owner models.Client
	if err := db.First(&owner, pet.ClientID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load owner information",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    BuildPublicProfile(&pet, &owner),
	})
}
