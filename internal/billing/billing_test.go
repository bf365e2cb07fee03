package billing

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rentpay_portal/internal/models"
)

// openTestDB opens an in-memory sqlite database with the real schema,
// including the composite unique index on payments.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// A single connection keeps every session on the same in-memory DB.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Property{}, &models.Tenant{}, &models.Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedTenant(t *testing.T, db *gorm.DB, name string, dueDay int, rent float64) models.Tenant {
	t.Helper()

	property := models.Property{
		AddressLine1: "12 Main St",
		City:         "Springfield",
		RentAmount:   rent,
	}
	if err := db.Create(&property).Error; err != nil {
		t.Fatalf("create property: %v", err)
	}

	tenant := models.Tenant{
		Name:          name,
		Email:         name + "@example.com",
		PaymentDueDay: dueDay,
		PropertyID:    &property.ID,
	}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tenant
}

func seedUnassignedTenant(t *testing.T, db *gorm.DB, name string, dueDay int) models.Tenant {
	t.Helper()

	tenant := models.Tenant{
		Name:          name,
		Email:         name + "@example.com",
		PaymentDueDay: dueDay,
	}
	if err := db.Create(&tenant).Error; err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tenant
}
