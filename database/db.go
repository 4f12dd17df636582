package database

import (
	"errors"
	"fmt"
	"os"

	"meditour-backend/models"
	"meditour-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	if err := godotenv.Load(); err != nil {
		utils.GetLogger().Warn(".env file not found, relying on process environment")
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "db"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=5432 sslmode=disable",
		host, os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		utils.GetLogger().Error("database connection failed: " + err.Error())
		panic("Could not connect to database")
	}
}

// AutoMigrate creates/updates all tables. Hardening (indexes, checks) is
// applied separately by Migrate.
func AutoMigrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Hospital{},
		&models.Agency{},
		&models.AgencyCommissionOverride{},
		&models.Reservation{},
		&models.ReservationStatusHistory{},
		&models.SatisfactionRating{},
		&models.SettlementLedgerEntry{},
		&models.ChargeRequest{},
		&models.AgencyPayoutRequest{},
		&models.TaxSettlement{},
		&models.TaxSettlementItem{},
		&models.IdempotencyKey{},
	)
	if err != nil {
		panic(fmt.Sprintf("automigrate failed: %v", err))
	}
}

// GetRequestTx returns the per-request transaction opened by
// middlewares.RequestTx.
func GetRequestTx(c *fiber.Ctx) (*gorm.DB, error) {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx, nil
		}
	}
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	return DB.Session(&gorm.Session{}), nil
}
