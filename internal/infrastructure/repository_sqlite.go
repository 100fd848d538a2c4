package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vidgrab/vidgrab/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLiteRepository implements HistoryRepository and PreferenceStore using SQLite
type SQLiteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository opens (or creates) the database at dbPath
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.HistoryEntry{}, &domain.Preference{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Create stores a new history entry
func (r *SQLiteRepository) Create(entry *domain.HistoryEntry) error {
	return r.db.Create(entry).Error
}

// Delete removes a history entry by ID
func (r *SQLiteRepository) Delete(id string) error {
	result := r.db.Delete(&domain.HistoryEntry{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("history entry %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// FindByID finds a history entry by ID
func (r *SQLiteRepository) FindByID(id string) (*domain.HistoryEntry, error) {
	var entry domain.HistoryEntry
	err := r.db.First(&entry, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("history entry %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &entry, nil
}

// FindAll lists history entries newest first
func (r *SQLiteRepository) FindAll(filter domain.HistoryFilter) ([]*domain.HistoryEntry, error) {
	var entries []*domain.HistoryEntry
	query := r.db.Model(&domain.HistoryEntry{})

	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	err := query.Order("created_at DESC").Find(&entries).Error
	return entries, err
}

// GetStats returns history statistics
func (r *SQLiteRepository) GetStats() (*domain.HistoryStats, error) {
	stats := &domain.HistoryStats{}

	if err := r.db.Model(&domain.HistoryEntry{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.HistoryStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.HistoryEntry{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.HistorySucceeded:
			stats.Succeeded = sc.Count
		case domain.HistoryFailed:
			stats.Failed = sc.Count
		case domain.HistoryFallback:
			stats.Fallback = sc.Count
		}
	}

	return stats, nil
}

// Get returns a stored preference
func (r *SQLiteRepository) Get(key string) (string, bool, error) {
	var pref domain.Preference
	err := r.db.Where("name = ?", key).First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return pref.Value, true, nil
}

// Set inserts or replaces a preference
func (r *SQLiteRepository) Set(key, value string) error {
	pref := &domain.Preference{Key: key, Value: value}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(pref).Error
}

// Ping checks that the database is reachable
func (r *SQLiteRepository) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
