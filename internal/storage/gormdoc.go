package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document 是 sqlite 里的文档表，一行存一整份 JSON 文档。
type Document struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     []byte `gorm:"type:blob"`
	UpdatedAt time.Time
}

// GormStore 用数据库的单行文档表实现 DocumentStore，
// 依赖 SQLite 单条语句的原子性保证整份文档的原子写入。
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(key string) ([]byte, error) {
	var doc Document
	if err := s.db.First(&doc, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get document %q: %w", key, err)
	}
	return doc.Value, nil
}

func (s *GormStore) Set(key string, value []byte) error {
	doc := Document{Key: key, Value: value}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&doc).Error; err != nil {
		return fmt.Errorf("set document %q: %w", key, err)
	}
	return nil
}

func (s *GormStore) Remove(key string) error {
	if err := s.db.Delete(&Document{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("remove document %q: %w", key, err)
	}
	return nil
}
