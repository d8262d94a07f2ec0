package mysql

import (
	"context"

	"gorm.io/gorm"

	"acta_diurna/internal/model"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// List 取待投递事件
func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.DigestOutbox, error) {
	var list []model.DigestOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = 0").
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate 投递失败记一次重试
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.DigestOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": 2, "retry": gorm.Expr("retry + 1")}).Error
}

// SuccessUpdate 投递成功
func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.DigestOutbox{}).Where("id = ?", id).
		Update("status", 1).Error
}
