package services

import (
	"fmt"
	"log"

	"github.com/petcode/petcode-api/models"
	"github.com/petcode/petcode-api/utils"
	"gorm.io/gorm"
)

// MigrationService repairs pet profile records created before the
// current schema: profiles missing the lost/found fields, and profiles
// whose public slug was still derived from the pet's name.
type MigrationService struct {
	db *gorm.DB
}

// NewMigrationService creates a migration service over the given database
func NewMigrationService(db *gorm.DB) *MigrationService {
	return &MigrationService{db: db}
}

// BackfillPetDefaults fills in the lost-flag and owner-message fields on
// profiles that predate them. Returns the number of repaired rows.
func (s *MigrationService) BackfillPetDefaults() (int64, error) {
	var repaired int64

	result := s.db.Model(&models.PetProfile{}).
		Where("is_lost IS NULL").
		Update("is_lost", false)
	if result.Error != nil {
		return repaired, fmt.Errorf("failed to backfill is_lost: %w", result.Error)
	}
	repaired += result.RowsAffected

	result = s.db.Model(&models.PetProfile{}).
		Where("owner_message IS NULL").
		Update("owner_message", "")
	if result.Error != nil {
		return repaired, fmt.Errorf("failed to backfill owner_message: %w", result.Error)
	}
	repaired += result.RowsAffected

	return repaired, nil
}

// RegenerateLegacySlugs replaces name-derived slugs with fresh random
// ones and propagates the new slug to the pet's QR orders. Profiles with
// random slugs are left untouched. Returns the number of migrated pets.
func (s *MigrationService) RegenerateLegacySlugs() (int64, error) {
	var pets []models.PetProfile
	if err := s.db.Find(&pets).Error; err != nil {
		return 0, fmt.Errorf("failed to load pet profiles: %w", err)
	}

	var migrated int64
	for i := range pets {
		pet := &pets[i]
		if !utils.IsLegacySlug(pet.ProfileSlug, pet.PetName) {
			continue
		}

		newSlug, err := s.uniqueSlug()
		if err != nil {
			return migrated, err
		}

		// Pet and its orders move to the new slug together
		err = s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.PetProfile{}).
				Where("id = ?", pet.ID).
				Update("profile_slug", newSlug).Error; err != nil {
				return fmt.Errorf("failed to update pet slug: %w", err)
			}

			if err := tx.Model(&models.QROrder{}).
				Where("pet_profile_id = ?", pet.ID).
				Update("profile_slug", newSlug).Error; err != nil {
				return fmt.Errorf("failed to propagate slug to orders: %w", err)
			}

			return nil
		})
		if err != nil {
			return migrated, err
		}

		log.Printf("Migrated legacy slug for pet %d: %s -> %s", pet.ID, pet.ProfileSlug, newSlug)
		migrated++
	}

	return migrated, nil
}

// uniqueSlug draws slugs until one is free of collisions
func (s *MigrationService) uniqueSlug() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		slug := utils.GenerateProfileSlug()

		var count int64
		if err := s.db.Model(&models.PetProfile{}).
			Where("profile_slug = ?", slug).
			Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check slug uniqueness: %w", err)
		}
		if count == 0 {
			return slug, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique slug")
}
