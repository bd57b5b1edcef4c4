package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"taskman/internal/model"
)

// NewMySQL returns a connected GORM DB instance. TranslateError is enabled
// so unique-constraint violations surface as gorm.ErrDuplicatedKey.
// Foreign-key constraints are not emitted: deleting a user neither cascades
// to nor is blocked by its tasks, and task inserts do not verify the owner.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// Migrate applies the schema for all models. Called once at startup before
// the server accepts requests.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Task{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
