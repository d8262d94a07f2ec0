package mysql

import (
	"time"

	"gorm.io/gorm"

	"acta_diurna/internal/model"
	"acta_diurna/internal/pkg"
)

type ContributorRepository struct {
	DB *gorm.DB
}

// Exists 两个用户之间是否已有供稿关系
func (r *ContributorRepository) Exists(a, b uint64) (bool, error) {
	var n int64
	err := r.DB.Model(&model.ContributorEdge{}).
		Where("pair_key = ?", pkg.PairKey(a, b)).
		Count(&n).Error
	if err != nil {
		return false, wrapStoreErr(err)
	}
	return n > 0, nil
}

// Unlink 解除关系：删边 + 写事件一个事务。没有边则 NotFound。
func (r *ContributorRepository) Unlink(ownerID, contributorID uint64, now time.Time) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("pair_key = ?", pkg.PairKey(ownerID, contributorID)).
			Delete(&model.ContributorEdge{})
		if res.Error != nil {
			return wrapStoreErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return pkg.ErrNotFound
		}
		return insertOutbox(tx, model.EventContributorRemoved, ownerID, contributorID, now)
	})
}

// ListContributorIDs 某用户的全部供稿人。边是无序对，两个方向都要查。
func (r *ContributorRepository) ListContributorIDs(userID uint64) ([]uint64, error) {
	var edges []model.ContributorEdge
	err := r.DB.
		Where("user_a = ? OR user_b = ?", userID, userID).
		Order("id ASC").Find(&edges).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	ids := make([]uint64, 0, len(edges))
	for i := range edges {
		ids = append(ids, edges[i].Other(userID))
	}
	return ids, nil
}
