package mysql

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"acta_diurna/internal/model"
)

type DigestRepository struct {
	DB *gorm.DB
}

// Find 不存在时返回 (nil, nil)，由上层决定算 NotFound 还是触发生成
func (r *DigestRepository) Find(ownerID uint64, requestedWeek string) (*model.Digest, error) {
	var d model.Digest
	err := r.DB.
		Where("owner_id = ? AND requested_week = ?", ownerID, requestedWeek).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return &d, nil
}

// Insert 以 (owner, week) 为键的原子插入。并发生成时输家插不进去，
// 返回 created=false，由上层改读赢家的结果。插入成功同事务写发布事件。
func (r *DigestRepository) Insert(d *model.Digest, now time.Time) (bool, error) {
	created := false
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}, {Name: "requested_week"}},
			DoNothing: true,
		}).Create(d)
		if res.Error != nil {
			return wrapStoreErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return insertOutbox(tx, model.EventDigestGenerated, d.OwnerID, d.ID, now)
	})
	return created, err
}

// Delete 删除缓存的周报（重新生成的前置步骤），幂等
func (r *DigestRepository) Delete(ownerID uint64, requestedWeek string) (bool, error) {
	res := r.DB.
		Where("owner_id = ? AND requested_week = ?", ownerID, requestedWeek).
		Delete(&model.Digest{})
	if res.Error != nil {
		return false, wrapStoreErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListByOwner 历史周报，按请求周倒序
func (r *DigestRepository) ListByOwner(ownerID uint64) ([]model.Digest, error) {
	var list []model.Digest
	err := r.DB.Where("owner_id = ?", ownerID).
		Order("requested_week DESC").Find(&list).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return list, nil
}
