package mysql

import (
	"errors"

	"gorm.io/gorm"

	"acta_diurna/internal/model"
	"acta_diurna/internal/pkg"
)

// MediaRepository 附件存储的数据库实现，对上层只暴露不透明的图片ID
type MediaRepository struct {
	DB *gorm.DB
}

// Store 占坑式插入：坑位取当前最大坑位+1，(story_id, slot) 唯一索引兜底。
// 并发上传撞了坑位就重读重试，重试路径上数量检查会收敛到上限。
func (r *MediaRepository) Store(img *model.StoryImage, limit int) error {
	for {
		var n int64
		err := r.DB.Model(&model.StoryImage{}).
			Where("story_id = ?", img.StoryID).Count(&n).Error
		if err != nil {
			return wrapStoreErr(err)
		}
		if n >= int64(limit) {
			return pkg.ErrMediaLimitExceeded
		}

		var next *int
		err = r.DB.Model(&model.StoryImage{}).
			Select("MAX(slot) + 1").
			Where("story_id = ?", img.StoryID).
			Scan(&next).Error
		if err != nil {
			return wrapStoreErr(err)
		}
		img.Slot = 0
		if next != nil {
			img.Slot = *next
		}

		err = r.DB.Create(img).Error
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			img.ID = 0
			continue
		}
		return wrapStoreErr(err)
	}
}

func (r *MediaRepository) Fetch(id uint64) (*model.StoryImage, error) {
	var img model.StoryImage
	err := r.DB.First(&img, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return &img, nil
}
