package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type FileAssetRecord struct {
	ID           uint   `gorm:"primaryKey"`
	Filename     string `gorm:"not null"`
	OriginalName string `gorm:"not null"`
	FilePath     string `gorm:"not null"`
	FileSize     int64  `gorm:"not null"`
	FileType     string
	Digest       string `gorm:"size:64"`
	UploadType   string `gorm:"size:30;not null;index"` // "ticket_design" or "other"
	RelatedID    uint   `gorm:"index"`
	CreatedAt    time.Time
}

func (FileAssetRecord) TableName() string {
	return "file_asset_records"
}

type FileAssetDAO struct {
	db *gorm.DB
}

func NewFileAssetDAO(db *gorm.DB) *FileAssetDAO {
	return &FileAssetDAO{
		db: db,
	}
}

func (d *FileAssetDAO) Insert(ctx context.Context, record FileAssetRecord) (FileAssetRecord, error) {
	if err := d.db.WithContext(ctx).Create(&record).Error; err != nil {
		return FileAssetRecord{}, classify(err)
	}

	return record, nil
}

func (d *FileAssetDAO) FindByRelatedID(ctx context.Context, uploadType string, relatedID uint) ([]FileAssetRecord, error) {
	var records []FileAssetRecord

	result := d.db.WithContext(ctx).
		Where("upload_type = ? AND related_id = ?", uploadType, relatedID).
		Order("id").
		Find(&records)
	if result.Error != nil {
		return nil, classify(result.Error)
	}

	return records, nil
}
