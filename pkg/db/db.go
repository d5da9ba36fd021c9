package db

import (
	"sync"

	_ "github.com/jackc/pgx/v4"
	"github.com/opsdesk-cloud/opsdesk/internal/models"
	"github.com/opsdesk-cloud/opsdesk/pkg/env"
	"github.com/opsdesk-cloud/opsdesk/pkg/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	conn *gorm.DB
	once sync.Once
)

// Connection returns the shared database handle, opening it on first
// use according to the processed environment.
func Connection() *gorm.DB {
	once.Do(func() {
		var err error

		switch env.Variables().DatabaseType {
		case "sqlite":
			conn, err = gorm.Open(
				sqlite.Open(env.Variables().DatabaseDSN),
				&gorm.Config{},
			)
		case "postgres":
			fallthrough
		default:
			conn, err = gorm.Open(
				postgres.Open(env.Variables().DatabaseDSN),
				&gorm.Config{},
			)
		}

		if err != nil {
			log.Fatal("failed to connect to database", "error", err)
		}
	})

	return conn
}

// Migrate creates or updates the schema for every opsdesk model.
func Migrate() error {
	return MigrateWith(Connection())
}

// MigrateWith runs the schema migration against the supplied handle.
func MigrateWith(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Priority{},
		&models.Complexity{},
		&models.Workcenter{},
		&models.Receive{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TaskAction{},
		&models.TaskHistory{},
		&models.Notification{},
		&models.RecordCounter{},
	)
}
