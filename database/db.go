package database

import (
	"fmt"
	"os"

	"asset-booking/database/seeders"
	"asset-booking/logger"
	"asset-booking/models/asset"
	"asset-booking/models/booking"
	"asset-booking/models/log"
	"asset-booking/models/organization"
	"asset-booking/models/user"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	// Get database configuration from environment variables
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	user := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE") // Optional: "disable", "require", etc.

	// Set default sslmode if not provided
	if sslmode == "" {
		sslmode = "disable"
	}

	// Build PostgreSQL DSN string
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	// Handle foreign key constraints after migrations
	if err := createForeignKeyConstraints(); err != nil {
		logger.Error("Failed to create foreign key constraints", err)
		return nil, err
	}
	logger.Success("All foreign key constraints created successfully")

	// Create indexes for better performance
	if err := createIndexes(); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		seeders.SeedDemoInventory(DB)
	}

	return DB, nil
}

// autoMigrate runs auto migration for all models in dependency order
func autoMigrate() error {
	// Stage 1: Core foundation models
	stage1Models := []interface{}{
		&organization.Organization{},
		&user.User{},
		&user.TeamMember{},
	}

	for _, model := range stage1Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: Inventory models
	stage2Models := []interface{}{
		&asset.Kit{},
		&asset.Asset{},
	}

	for _, model := range stage2Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: Booking lifecycle models
	stage3Models := []interface{}{
		&booking.Booking{},
		&booking.PartialCheckin{},
		&booking.Note{},
		&booking.Reminder{},
	}

	for _, model := range stage3Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 4: Remaining models
	remainingModels := []interface{}{
		// Logging
		&log.Log{},
	}

	for _, model := range remainingModels {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes() error {
	// User indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_uuid ON users(uuid)").Error; err != nil {
		return fmt.Errorf("failed to create user uuid index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)").Error; err != nil {
		return fmt.Errorf("failed to create user email index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_organization_id ON users(organization_id)").Error; err != nil {
		return fmt.Errorf("failed to create user organization_id index: %w", err)
	}

	// Asset indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_assets_status ON assets(status)").Error; err != nil {
		return fmt.Errorf("failed to create asset status index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_assets_kit_id ON assets(kit_id)").Error; err != nil {
		return fmt.Errorf("failed to create asset kit_id index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_assets_organization_id ON assets(organization_id)").Error; err != nil {
		return fmt.Errorf("failed to create asset organization_id index: %w", err)
	}

	// Booking indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)").Error; err != nil {
		return fmt.Errorf("failed to create booking status index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_organization_id ON bookings(organization_id)").Error; err != nil {
		return fmt.Errorf("failed to create booking organization_id index: %w", err)
	}
	// Window queries filter on both bounds at once
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_window ON bookings(booked_from, booked_to)").Error; err != nil {
		return fmt.Errorf("failed to create booking window index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_bookings_created_at ON bookings(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create booking created_at index: %w", err)
	}

	// Partial checkin indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_booking_partial_checkins_booking_id ON booking_partial_checkins(booking_id)").Error; err != nil {
		return fmt.Errorf("failed to create partial checkin booking_id index: %w", err)
	}

	// Reminder indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_booking_reminders_pending ON booking_reminders(booking_id) WHERE fired_at IS NULL AND cancelled_at IS NULL").Error; err != nil {
		return fmt.Errorf("failed to create reminder pending index: %w", err)
	}

	// Log indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_method ON logs(method)").Error; err != nil {
		return fmt.Errorf("failed to create log method index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_status_code ON logs(status_code)").Error; err != nil {
		return fmt.Errorf("failed to create log status_code index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create log created_at index: %w", err)
	}

	return nil
}

// createForeignKeyConstraints creates foreign key constraints after auto migration
func createForeignKeyConstraints() error {
	// Define constraints with their names for checking existence
	constraints := []struct {
		name string
		sql  string
	}{
		{
			name: "fk_bookings_organization",
			sql: `ALTER TABLE bookings ADD CONSTRAINT fk_bookings_organization
				  FOREIGN KEY (organization_id) REFERENCES organizations(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
		{
			name: "fk_assets_organization",
			sql: `ALTER TABLE assets ADD CONSTRAINT fk_assets_organization
				  FOREIGN KEY (organization_id) REFERENCES organizations(id)
				  ON UPDATE CASCADE ON DELETE RESTRICT`,
		},
		{
			name: "fk_partial_checkins_booking",
			sql: `ALTER TABLE booking_partial_checkins ADD CONSTRAINT fk_partial_checkins_booking
				  FOREIGN KEY (booking_id) REFERENCES bookings(id)
				  ON UPDATE CASCADE ON DELETE CASCADE`,
		},
		{
			name: "fk_booking_notes_booking",
			sql: `ALTER TABLE booking_notes ADD CONSTRAINT fk_booking_notes_booking
				  FOREIGN KEY (booking_id) REFERENCES bookings(id)
				  ON UPDATE CASCADE ON DELETE CASCADE`,
		},
		{
			name: "fk_booking_reminders_booking",
			sql: `ALTER TABLE booking_reminders ADD CONSTRAINT fk_booking_reminders_booking
				  FOREIGN KEY (booking_id) REFERENCES bookings(id)
				  ON UPDATE CASCADE ON DELETE CASCADE`,
		},
	}

	for _, constraint := range constraints {
		// Check if constraint already exists
		var exists bool
		checkSQL := `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.table_constraints
				WHERE constraint_name = $1
			)
		`

		err := DB.Raw(checkSQL, constraint.name).Scan(&exists).Error
		if err != nil {
			logger.Warning(fmt.Sprintf("Failed to check constraint existence: %s - Error: %v", constraint.name, err))
			continue
		}

		if !exists {
			if err := DB.Exec(constraint.sql).Error; err != nil {
				logger.Warning(fmt.Sprintf("Failed to create constraint: %s - Error: %v", constraint.name, err))
			} else {
				logger.Success(fmt.Sprintf("Successfully created constraint: %s", constraint.name))
			}
		} else {
			logger.Debug(fmt.Sprintf("Constraint already exists: %s", constraint.name))
		}
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
