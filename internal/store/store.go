package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/reconciler/internal/records"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CanonicalRow is the relational shape of a canonical record. One row
// per ISBN family: a new resolution pass replaces the previous row.
type CanonicalRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Family      string    `gorm:"column:family;uniqueIndex"`
	ISBN13      string    `gorm:"column:isbn_13"`
	Title       string    `gorm:"column:title"`
	Authors     string    `gorm:"column:authors"`
	Publisher   string    `gorm:"column:publisher"`
	Year        int       `gorm:"column:year"`
	PageCount   int       `gorm:"column:page_count"`
	WeightGrams float64   `gorm:"column:weight_grams"`
	HeightMM    float64   `gorm:"column:height_mm"`
	WidthMM     float64   `gorm:"column:width_mm"`
	ThicknessMM float64   `gorm:"column:thickness_mm"`
	Confidence  float64   `gorm:"column:confidence"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

// TableName overrides the gorm default.
func (CanonicalRow) TableName() string {
	return "canonical_records"
}

// ProvenanceRow records which source record supplied one field of a
// canonical record.
type ProvenanceRow struct {
	ID          uint   `gorm:"column:id;primaryKey;autoIncrement"`
	CanonicalID string `gorm:"column:canonical_id;index"`
	Field       string `gorm:"column:field"`
	RecordID    string `gorm:"column:record_id"`
}

// TableName overrides the gorm default.
func (ProvenanceRow) TableName() string {
	return "canonical_provenance"
}

// Store persists canonical records through gorm.
type Store struct {
	db *gorm.DB
}

// New wraps an existing gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to the configured database. Supported drivers are mysql
// and sqlite.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate creates the tables when missing.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&CanonicalRow{}, &ProvenanceRow{})
}

// Save upserts one canonical record transactionally, keyed by ISBN
// family: the previous row and its provenance are replaced, so at most
// one canonical row exists per family per pass.
func (s *Store) Save(ctx context.Context, rec records.CanonicalRecord) error {
	row := CanonicalRow{
		ID:          rec.ID,
		Family:      rec.Family,
		ISBN13:      rec.ISBN13,
		Title:       rec.Title,
		Authors:     strings.Join(rec.Authors, "; "),
		Publisher:   rec.Publisher,
		Year:        rec.Year,
		PageCount:   rec.PageCount,
		WeightGrams: rec.WeightGrams,
		HeightMM:    rec.HeightMM,
		WidthMM:     rec.WidthMM,
		ThicknessMM: rec.ThicknessMM,
		Confidence:  rec.Confidence,
		CreatedAt:   rec.CreatedAt,
	}
	if row.Family == "" {
		// Orphan records have no family key; key them by their own ID
		// so they never collide.
		row.Family = "orphan:" + rec.ID
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []CanonicalRow
		if err := tx.Where("family = ?", row.Family).Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to query existing canonical record: %w", err)
		}
		for _, old := range existing {
			if err := tx.Where("canonical_id = ?", old.ID).Delete(&ProvenanceRow{}).Error; err != nil {
				return fmt.Errorf("failed to delete old provenance: %w", err)
			}
		}
		if len(existing) > 0 {
			if err := tx.Where("family = ?", row.Family).Delete(&CanonicalRow{}).Error; err != nil {
				return fmt.Errorf("failed to delete old canonical record: %w", err)
			}
		}

		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert canonical record: %w", err)
		}
		fields := make([]string, 0, len(rec.Provenance))
		for field := range rec.Provenance {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			p := ProvenanceRow{
				CanonicalID: row.ID,
				Field:       field,
				RecordID:    rec.Provenance[field],
			}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("failed to insert provenance: %w", err)
			}
		}
		return nil
	})
}

// SaveAll persists a batch of canonical records, stopping on the first
// error.
func (s *Store) SaveAll(ctx context.Context, recs []records.CanonicalRecord) error {
	for _, rec := range recs {
		if err := s.Save(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
