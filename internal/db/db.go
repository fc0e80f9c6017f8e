package db

import (
	"log"
	"time"

	"github.com/glowbook/booking-api/internal/config"
	"github.com/glowbook/booking-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Specialist{},
		&models.PortfolioImage{},
		&models.Service{},
		&models.Appointment{},
		&models.AppointmentPeriod{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// Last line of defence against racing bookings: overlapping periods for
	// the same specialist are rejected by Postgres itself (SQLSTATE 23P01).
	// start_time/end_time are timestamptz columns, so the range must be
	// tstzrange.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		log.Fatalf("failed to create btree_gist extension: %v", err)
	}
	if err := db.Exec(`
        DO $$ BEGIN
            ALTER TABLE appointment_periods
                ADD CONSTRAINT appointment_periods_no_overlap
                EXCLUDE USING gist (
                    specialist_id WITH =,
                    tstzrange(start_time, end_time) WITH &&
                );
        EXCEPTION
            WHEN duplicate_object THEN NULL;
            WHEN duplicate_table THEN NULL;
        END $$
    `).Error; err != nil {
		log.Fatalf("failed to create overlap constraint: %v", err)
	}

	if err := db.Exec(`
        UPDATE specialists
        SET timezone = 'UTC'
        WHERE timezone IS NULL OR timezone = ''
    `).Error; err != nil {
		log.Fatalf("failed to backfill specialist timezones: %v", err)
	}

	return db
}
