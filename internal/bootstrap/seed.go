package bootstrap

import (
	"log"

	"github.com/workbridge-app/workbridge/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Profile{},
		&entity.Job{},
		&entity.Proposal{},
		&entity.Conversation{},
		&entity.Message{},
		&entity.Attachment{},
		&entity.Notification{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleClient, Description: "Posts jobs and hires freelancers"},
		{Name: entity.RoleFreelancer, Description: "Submits proposals and takes on work"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedDemoUsers creates one client and one freelancer for local development.
func SeedDemoUsers(db *gorm.DB) error {
	demoUsers := []struct {
		username string
		email    string
		role     string
		fullName string
	}{
		{"acme_corp", "client@workbridge.dev", entity.RoleClient, "Acme Corp"},
		{"jane_dev", "freelancer@workbridge.dev", entity.RoleFreelancer, "Jane Developer"},
	}

	for _, demo := range demoUsers {
		var count int64
		if err := db.Model(&entity.User{}).
			Where("email = ?", demo.email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		var role entity.Role
		if err := db.Where("name = ?", demo.role).First(&role).Error; err != nil {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := entity.User{
			Username:     demo.username,
			Email:        demo.email,
			PasswordHash: string(hashed),
			RoleID:       &role.ID,
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}

		profile := entity.Profile{
			UserID:   user.ID,
			FullName: demo.fullName,
		}
		if err := db.Create(&profile).Error; err != nil {
			return err
		}

		log.Printf("Seeded demo user %s (%s)", demo.username, demo.role)
	}

	return nil
}
