package database

import (
	"fmt"
	"log"
	"os"

	"github.com/vidcourse/api/model"
	"github.com/vidcourse/api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedAppSettings(); err != nil {
		return fmt.Errorf("failed to seed app settings: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user
func (s *Seeder) SeedAdminUser() error {
	// Check if admin already exists
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", "admin").Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping...")
		return nil
	}

	// Get admin credentials from environment variables
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
		return nil
	}

	// Hash password
	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Name:         "System Administrator",
		Role:         "admin",
		Approved:     true,
		TokenVersion: 0,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("Created admin user: %s\n", admin.Email)
	return nil
}

// SeedAppSettings creates default application settings
func (s *Seeder) SeedAppSettings() error {
	var count int64
	if err := s.db.Model(&model.AppSetting{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("App settings already exist, skipping...")
		return nil
	}

	settings := []model.AppSetting{
		{
			Key:         model.SettingPortalName,
			Value:       "Video Course Portal",
			Type:        "string",
			Description: "Public display name of the portal",
			IsPublic:    true,
			Category:    "general",
		},
		{
			Key:         model.SettingWhatsAppNumber,
			Value:       "",
			Type:        "string",
			Description: "WhatsApp number students contact to negotiate a subscription",
			IsPublic:    true,
			Category:    "subscriptions",
		},
		{
			Key:         model.SettingMaxReceiptSizeMB,
			Value:       "10",
			Type:        "int",
			Description: "Maximum payment receipt upload size in megabytes",
			IsPublic:    false,
			Category:    "uploads",
		},
	}

	if err := s.db.Create(&settings).Error; err != nil {
		return err
	}

	log.Printf("Created %d app settings\n", len(settings))
	return nil
}
