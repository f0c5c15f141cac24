package repository

import (
	"context"
	"fmt"

	"github.com/vietanh2810/event-ticketing-api/internal/domain"
	"github.com/vietanh2810/event-ticketing-api/internal/repository/dao"
)

type FileAssetDAO interface {
	Insert(ctx context.Context, record dao.FileAssetRecord) (dao.FileAssetRecord, error)
}

type FileAssetRepository struct {
	dao FileAssetDAO
}

func NewFileAssetRepository(dao FileAssetDAO) *FileAssetRepository {
	return &FileAssetRepository{
		dao: dao,
	}
}

func (r *FileAssetRepository) Record(ctx context.Context, record domain.FileAssetRecord) (domain.FileAssetRecord, error) {
	created, err := r.dao.Insert(ctx, dao.FileAssetRecord{
		Filename:     record.StoredName,
		OriginalName: record.OriginalName,
		FilePath:     record.StoredPath,
		FileSize:     record.Size,
		FileType:     record.MediaType,
		Digest:       record.Digest,
		UploadType:   string(record.Purpose),
		RelatedID:    record.RelatedID,
	})
	if err != nil {
		return domain.FileAssetRecord{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	record.ID = created.ID
	record.CreatedAt = created.CreatedAt

	return record, nil
}
