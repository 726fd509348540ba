package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is one row of the documents table (see migrations/docstore).
type Document struct {
	Name      string         `gorm:"primaryKey;type:text"`
	Body      datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (Document) TableName() string {
	return "documents"
}

// PostgresStore keeps documents in a single jsonb table.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context, name string, v any) (bool, error) {
	if !validName(name) {
		return false, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	var doc Document
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal(doc.Body, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

func (s *PostgresStore) Save(ctx context.Context, name string, v any) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	doc := Document{Name: name, Body: datatypes.JSON(body), UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
