// Package database implement connection to database service and initialize ORM.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	// pgx database/sql driver, used by gorm's postgres dialector
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/XevilA/spu-nexus-sub000/internal/config"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// DBinstanceStruct is a struct that holds the GORM DB instance and related information.
type DBinstanceStruct struct {
	*gorm.DB
	// Config
	Config *DBConfig
	// cached raw DB and mutex for lazy-init
	sqlDB *sql.DB
	mu    sync.RWMutex
}

// DBConfig holds the configuration parameters for connecting to a database.
type DBConfig struct {
	Host      string
	Port      string
	User      string
	Password  string
	DBName    string
	Constr    string
	useConstr bool

	MaxOpenConns int
	MaxIdleConns int
	ConnMaxLife  time.Duration

	// Admin account created on first start when all three are set
	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

// NewDBConfig builds a DBConfig from the loaded process configuration.
func NewDBConfig(cfg *config.Config) *DBConfig {
	return &DBConfig{
		Host:          cfg.DB.Host,
		Port:          cfg.DB.Port,
		User:          cfg.DB.User,
		Password:      cfg.DB.Password,
		DBName:        cfg.DB.Name,
		Constr:        cfg.DB.ConnStr,
		useConstr:     cfg.DB.UseConnStr,
		MaxOpenConns:  cfg.DB.MaxOpenConns,
		MaxIdleConns:  cfg.DB.MaxIdleConns,
		ConnMaxLife:   cfg.DB.ConnMaxLife,
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
		AdminEmail:    cfg.AdminEmail,
	}
}

func (d *DBConfig) getDsn() (string, error) {
	if d.useConstr {
		if d.Constr == "" {
			return "", errors.New("DB_CONNECTION_STR is empty")
		}
		return d.Constr, nil
	}
	if d.Host == "" || d.Port == "" || d.User == "" || d.Password == "" || d.DBName == "" {
		return "", errors.New("database configuration is incomplete")
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.DBName), nil
}

var dbInstance *DBinstanceStruct

// NewDBInstance creates a new DBinstanceStruct with the given configuration.
// It connects, installs extensions, migrates the schema and seeds the admin account.
func NewDBInstance(config *DBConfig) (*DBinstanceStruct, error) {
	connStr, err := config.getDsn()
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(postgres.Open(connStr), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if gin.IsDebugging() {
		gdb = gdb.Debug()
	}

	newDb := &DBinstanceStruct{
		DB:     gdb,
		Config: config,
	}

	if err := newDb.configurePool(); err != nil {
		return nil, fmt.Errorf("failed to configure pool: %w", err)
	}
	if err := newDb.installExtension(); err != nil {
		return nil, fmt.Errorf("failed to install extension: %w", err)
	}
	if err := newDb.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := newDb.createAdmin(); err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	return newDb, nil
}

// GetMainDB returns the main database instance, initializing it if necessary.
func GetMainDB(cfg *config.Config) (*DBinstanceStruct, error) {
	// Reuse Connection
	if dbInstance != nil {
		return dbInstance, nil
	}

	db, err := NewDBInstance(NewDBConfig(cfg))
	if err != nil {
		return nil, err
	}
	dbInstance = db
	return db, nil
}

// Raw returns the underlying *sql.DB, caching it after the first successful retrieval.
// It is safe for concurrent use.
func (d *DBinstanceStruct) Raw() (*sql.DB, error) {
	if d == nil {
		return nil, fmt.Errorf("DBinstanceStruct is nil")
	}

	// fast path: cached value
	d.mu.RLock()
	if d.sqlDB != nil {
		raw := d.sqlDB
		d.mu.RUnlock()
		return raw, nil
	}
	d.mu.RUnlock()

	// slow path: initialize
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sqlDB != nil {
		return d.sqlDB, nil
	}
	if d.DB == nil {
		return nil, fmt.Errorf("gorm DB is nil")
	}
	raw, err := d.DB.DB()
	if err != nil {
		return nil, err
	}
	d.sqlDB = raw
	return raw, nil
}

func (d *DBinstanceStruct) configurePool() error {
	raw, err := d.Raw()
	if err != nil {
		return err
	}
	if d.Config.MaxOpenConns > 0 {
		raw.SetMaxOpenConns(d.Config.MaxOpenConns)
	}
	if d.Config.MaxIdleConns > 0 {
		raw.SetMaxIdleConns(d.Config.MaxIdleConns)
	}
	if d.Config.ConnMaxLife > 0 {
		raw.SetConnMaxLifetime(d.Config.ConnMaxLife)
	}
	return nil
}

func (d *DBinstanceStruct) createAdmin() error {
	if d.Config.AdminUsername == "" || d.Config.AdminPassword == "" || d.Config.AdminEmail == "" {
		logrus.Info("Admin username, password or email not set, skipping admin creation")
		return nil
	}

	var count int64
	if err := d.Model(&model.Profile{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := utilities.CreateAdmin(d.Config.AdminPassword, d.Config.AdminUsername, d.Config.AdminEmail, d.DB)
	return err
}

// Migrate database
func (d *DBinstanceStruct) Migrate() error {
	return d.AutoMigrate(model.MigrateAble...)
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (d *DBinstanceStruct) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	oriDB, err := d.Raw()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		logrus.WithError(err).Error("db down")
		return stats
	}

	if err = oriDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		logrus.WithError(err).Error("db down")
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := oriDB.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	if d.Config.MaxOpenConns > 0 && dbStats.OpenConnections > d.Config.MaxOpenConns*4/5 {
		stats["message"] = "The database is experiencing heavy load."
	}

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	if dbStats.MaxIdleClosed > int64(dbStats.OpenConnections)/2 {
		stats["message"] = "Many idle connections are being closed, consider revising the connection pool settings."
	}

	if dbStats.MaxLifetimeClosed > int64(dbStats.OpenConnections)/2 {
		stats["message"] = "Many connections are being closed due to max lifetime, consider increasing max lifetime or revising the connection usage pattern."
	}

	return stats
}

// Close closes the database connection.
func (d *DBinstanceStruct) Close() error {
	logrus.WithField("database", d.Config.DBName).Info("Disconnected from database")
	oriDB, err := d.Raw()
	if err != nil {
		return err
	}
	return oriDB.Close()
}

func (d *DBinstanceStruct) installExtension() error {
	err := d.WithContext(context.Background()).Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error
	if err != nil {
		return err
	}
	logrus.Debug("uuid-ossp extension installed or already exists")
	return nil
}
