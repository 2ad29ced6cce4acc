package seeders

import (
	"log"

	"gorm.io/gorm"

	assetModel "asset-booking/models/asset"
	orgModel "asset-booking/models/organization"
	userModel "asset-booking/models/user"
)

// SeedDemoInventory provisions a demo organization with users, team
// members, kits and assets so a fresh install has something to book.
// Idempotent: it keys off the organization name and skips when present.
func SeedDemoInventory(db *gorm.DB) {
	log.Printf("🔍 Checking demo inventory...")

	var count int64
	if err := db.Model(&orgModel.Organization{}).Where("name = ?", "Demo Workspace").Count(&count).Error; err != nil {
		log.Printf("❌ Failed to check demo organization: %v", err)
		return
	}
	if count > 0 {
		log.Printf("✅ Demo inventory already present. No seeding needed.")
		return
	}

	log.Printf("🌱 Seeding demo inventory...")

	org := orgModel.Organization{Name: "Demo Workspace"}
	if err := db.Create(&org).Error; err != nil {
		log.Printf("❌ Failed to seed demo organization: %v", err)
		return
	}

	adminEmail := "admin@example.com"
	selfEmail := "casey@example.com"
	users := []userModel.User{
		{
			Uuid:           "7f8b5c1e-0000-4000-8000-000000000001",
			Username:       "demo-admin",
			LegalName:      "Demo Admin",
			Email:          &adminEmail,
			EmailVerified:  true,
			OrganizationID: org.ID,
			Role:           userModel.RoleAdmin,
		},
		{
			Uuid:           "7f8b5c1e-0000-4000-8000-000000000002",
			Username:       "casey",
			LegalName:      "Casey Field",
			Email:          &selfEmail,
			EmailVerified:  true,
			OrganizationID: org.ID,
			Role:           userModel.RoleSelfService,
		},
	}
	for _, u := range users {
		if err := db.Create(&u).Error; err != nil {
			log.Printf("❌ Failed to seed user %s: %v", u.Username, err)
		} else {
			log.Printf("✅ Added user: %s", u.Username)
		}
	}

	crewEmail := "freelancer@example.com"
	member := userModel.TeamMember{
		Name:           "Jordan Freelance",
		Email:          &crewEmail,
		OrganizationID: org.ID,
	}
	if err := db.Create(&member).Error; err != nil {
		log.Printf("❌ Failed to seed team member: %v", err)
	}

	kit := assetModel.Kit{
		Name:           "Camera Kit A",
		OrganizationID: org.ID,
		Status:         assetModel.StatusAvailable,
	}
	if err := db.Create(&kit).Error; err != nil {
		log.Printf("❌ Failed to seed kit: %v", err)
		return
	}

	assets := []assetModel.Asset{
		{Title: "Canon R6 Body", OrganizationID: org.ID, KitID: &kit.ID, Status: assetModel.StatusAvailable},
		{Title: "RF 24-70mm Lens", OrganizationID: org.ID, KitID: &kit.ID, Status: assetModel.StatusAvailable},
		{Title: "Tripod Manfrotto 055", OrganizationID: org.ID, Status: assetModel.StatusAvailable},
		{Title: "Sennheiser MKE 600", OrganizationID: org.ID, Status: assetModel.StatusAvailable},
		{Title: "LED Panel Aputure 300d", OrganizationID: org.ID, Status: assetModel.StatusAvailable},
	}

	successCount := 0
	failureCount := 0
	for _, a := range assets {
		if err := db.Create(&a).Error; err != nil {
			log.Printf("❌ Failed to seed asset %s: %v", a.Title, err)
			failureCount++
		} else {
			log.Printf("✅ Added: %s", a.Title)
			successCount++
		}
	}

	log.Printf("🎉 Seeding completed! Successfully inserted %d assets, %d failures", successCount, failureCount)
}
