package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

var defaultCurrencies = []entities.Currency{
	{ShortName: "USD", Name: "United States Dollar"},
	{ShortName: "EUR", Name: "Euro"},
	{ShortName: "GBP", Name: "British Pound Sterling"},
	{ShortName: "JPY", Name: "Japanese Yen"},
	{ShortName: "AUD", Name: "Australian Dollar"},
}

// Options selects the store and tunes the connection pool.
type Options struct {
	Driver string // sqlite (default), postgres or mysql
	DSN    string // postgres/mysql connection string
	Path   string // sqlite file path

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	LogLevel string // gorm SQL logger: silent, error, warn, info

	Logger   *logger.Logger
	Observer OperationObserver
}

// Database is the storage gateway. It owns the process-wide connection pool;
// repositories receive it at construction and never open their own.
type Database struct {
	DB       *gorm.DB
	driver   string
	log      *logger.Logger
	observer OperationObserver
}

func NewDatabase(opts Options) (*Database, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(parseGormLogLevel(opts.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	driver := normalizeDriver(opts.Driver)
	if driver == DriverSQLite {
		// One writer at a time; concurrent callers queue on the pool instead
		// of failing with SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(
		&entities.Currency{},
		&entities.User{},
		&entities.Author{},
		&entities.Category{},
		&entities.Book{},
		&entities.Rating{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	database := &Database{
		DB:       db,
		driver:   driver,
		log:      log,
		observer: opts.Observer,
	}

	if err := database.seedCurrencies(); err != nil {
		return nil, fmt.Errorf("failed to seed currencies: %w", err)
	}

	log.Info("database initialized", "driver", driver)
	return database, nil
}

// Driver returns the normalized driver name.
func (d *Database) Driver() string {
	return d.driver
}

// PingContext checks that the store is reachable.
func (d *Database) PingContext(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedCurrencies() error {
	for _, currency := range defaultCurrencies {
		var existing entities.Currency
		result := d.DB.Where("short_name = ?", currency.ShortName).Limit(1).Find(&existing)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			continue
		}
		if err := d.DB.Create(&currency).Error; err != nil {
			return fmt.Errorf("failed to create currency %s: %w", currency.ShortName, err)
		}
		d.log.Debug("seeded currency", "short_name", currency.ShortName)
	}
	return nil
}

func dialectorFor(opts Options) (gorm.Dialector, error) {
	switch normalizeDriver(opts.Driver) {
	case DriverSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite driver requires a database path")
		}
		return sqlite.Open(sqliteDSN(opts.Path)), nil
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres driver requires DATABASE_DSN")
		}
		return postgres.Open(opts.DSN), nil
	case DriverMySQL:
		if opts.DSN == "" {
			return nil, fmt.Errorf("mysql driver requires DATABASE_DSN")
		}
		return mysql.Open(opts.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	case "mysql", "mariadb":
		return DriverMySQL
	default:
		return driver
	}
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_journal_mode=WAL&_busy_timeout=5000"
}

func parseGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "info":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}
