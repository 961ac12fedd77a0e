package database

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"propfinder/server/internal/models"
)

type Database struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewDatabase opens the content store. driver is "sqlite" or "mysql".
func NewDatabase(driver, dsn string, logger *logrus.Logger) (*Database, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if db.Dialector.Name() == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
	}

	logger.WithField("driver", db.Dialector.Name()).Info("Connected to content store")
	return &Database{db: db, logger: logger}, nil
}

func (d *Database) GetDB() *gorm.DB {
	return d.db
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UpsertRecords inserts records, overwriting rows that share a primary key.
// records must be a slice of one of the market record types.
func UpsertRecords(tx *gorm.DB, records interface{}) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(records, 100).Error
}

// SaveRecords upserts records inside a transaction
func (d *Database) SaveRecords(ctx context.Context, records interface{}) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return UpsertRecords(tx, records)
	})
}

// CountRows returns the number of rows in a market table
func (d *Database) CountRows(ctx context.Context, market models.Market) (int64, error) {
	table, err := tableName(market)
	if err != nil {
		return 0, err
	}
	var count int64
	err = d.db.WithContext(ctx).Table(table).Count(&count).Error
	return count, err
}

// ScanRows reads a window of raw rows from a market table in primary key
// order, for bulk export into the search index.
func (d *Database) ScanRows(ctx context.Context, market models.Market, offset, limit int) ([]models.Row, error) {
	table, err := tableName(market)
	if err != nil {
		return nil, err
	}

	var raw []map[string]interface{}
	err = d.db.WithContext(ctx).
		Table(table).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&raw).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", table, err)
	}

	rows := make([]models.Row, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, models.Row(r))
	}
	return rows, nil
}

func tableName(market models.Market) (string, error) {
	switch market {
	case models.MarketHyderabad:
		return models.HyderabadRecord{}.TableName(), nil
	case models.MarketGoa:
		return models.GoaRecord{}.TableName(), nil
	case models.MarketDubai:
		return models.DubaiRecord{}.TableName(), nil
	}
	return "", fmt.Errorf("unknown market %q", market)
}
