package initializers

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ProgramMysticxxx/blog-project/models"
)

var DB *gorm.DB

// Dialector picks the gorm driver for driver.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func ConnectToDB() {
	dialector, err := Dialector(Cfg.DBDriver, Cfg.DSN)
	if err != nil {
		panic(err.Error())
	}
	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}
}

func SyncDB() {
	err := DB.AutoMigrate(models.All()...)
	if err != nil {
		panic("Failed to synchronize database: " + err.Error())
	}
}
