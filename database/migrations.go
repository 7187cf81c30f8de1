package database

import (
	"log"

	"gikai/models"

	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.AdminUser{},
		&models.CouncilMember{},
		&models.Question{},
		&models.Response{},
		&models.News{},
		&models.SlideshowSlide{},
		&models.FAQItem{},
		&models.ContactMessage{},
		&models.Like{},
		&models.UserDemographic{},
		&models.StoredFile{},
	)

	if err != nil {
		log.Printf("Error running migrations: %v", err)
		return err
	}

	log.Println("Migrations completed successfully")
	return nil
}
