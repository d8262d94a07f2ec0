package mysql

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"acta_diurna/internal/model"
	"acta_diurna/internal/pkg"
)

type StoryRepository struct {
	DB *gorm.DB
}

func (r *StoryRepository) FindByID(id uint64) (*model.Story, error) {
	var story model.Story
	err := r.DB.First(&story, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return &story, nil
}

func (r *StoryRepository) FindByAuthorWeek(authorID uint64, weekID string) (*model.Story, error) {
	var story model.Story
	err := r.DB.Where("author_id = ? AND week_id = ?", authorID, weekID).First(&story).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return &story, nil
}

// UpsertDraft (author, week) 上至多一条记录。已提交则拒绝，
// 已有草稿原地覆盖，否则新建。并发新建靠唯一索引兜底。
func (r *StoryRepository) UpsertDraft(story *model.Story) (*model.Story, error) {
	existing, err := r.FindByAuthorWeek(story.AuthorID, story.WeekID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.State == model.StorySubmitted {
			return nil, pkg.ErrStoryLocked
		}
		err = r.DB.Model(existing).Updates(map[string]any{
			"author_name": story.AuthorName,
			"title":       story.Title,
			"headline":    story.Headline,
			"body":        story.Body,
			"is_headline": story.IsHeadline,
		}).Error
		if err != nil {
			return nil, wrapStoreErr(err)
		}
		return r.FindByAuthorWeek(story.AuthorID, story.WeekID)
	}
	story.State = model.StoryDraft
	if err := r.DB.Create(story).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发写草稿撞了唯一索引，谁先到都一样，重试一次覆盖
			return r.UpsertDraft(story)
		}
		return nil, wrapStoreErr(err)
	}
	return story, nil
}

// Submit 提交投稿。已有草稿就带 state guard 原地晋升，
// 没有就直接建 submitted 记录；两个并发提交只有一个能赢。
func (r *StoryRepository) Submit(story *model.Story, now time.Time) (*model.Story, error) {
	existing, err := r.FindByAuthorWeek(story.AuthorID, story.WeekID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.State == model.StorySubmitted {
			return nil, pkg.ErrAlreadySubmitted
		}
		res := r.DB.Model(&model.Story{}).
			Where("id = ? AND state = ?", existing.ID, model.StoryDraft).
			Updates(map[string]any{
				"author_name":  story.AuthorName,
				"title":        story.Title,
				"headline":     story.Headline,
				"body":         story.Body,
				"is_headline":  story.IsHeadline,
				"state":        model.StorySubmitted,
				"submitted_at": now,
			})
		if res.Error != nil {
			return nil, wrapStoreErr(res.Error)
		}
		if res.RowsAffected == 0 {
			// guard 没命中说明别人先提交了
			return nil, pkg.ErrAlreadySubmitted
		}
		return r.FindByAuthorWeek(story.AuthorID, story.WeekID)
	}

	story.State = model.StorySubmitted
	story.SubmittedAt = &now
	if err := r.DB.Create(story).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkg.ErrAlreadySubmitted
		}
		return nil, wrapStoreErr(err)
	}
	return story, nil
}

// ListSubmitted 按周取一组作者的已提交投稿，
// 排序规则直接落在 SQL：头条在前，组内按提交时间升序，id 兜底保证稳定。
func (r *StoryRepository) ListSubmitted(authorIDs []uint64, weekID string) ([]model.Story, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	var list []model.Story
	err := r.DB.
		Where("author_id IN ? AND week_id = ? AND state = ?", authorIDs, weekID, model.StorySubmitted).
		Order("is_headline DESC, submitted_at ASC, id ASC").
		Find(&list).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return list, nil
}

// LatestActiveWeek 回退查询：不超过 maxWeek 的最近一个有投稿的周。
// 周标识补零后字典序即时间序，直接 MAX 即可，走 (author_id, week_id) 索引。
func (r *StoryRepository) LatestActiveWeek(authorIDs []uint64, maxWeek string) (string, error) {
	if len(authorIDs) == 0 {
		return "", nil
	}
	var week *string
	err := r.DB.Model(&model.Story{}).
		Select("MAX(week_id)").
		Where("author_id IN ? AND week_id <= ? AND state = ?", authorIDs, maxWeek, model.StorySubmitted).
		Scan(&week).Error
	if err != nil {
		return "", wrapStoreErr(err)
	}
	if week == nil {
		return "", nil
	}
	return *week, nil
}

// ListByAuthor 作者自己的投稿历史
func (r *StoryRepository) ListByAuthor(authorID uint64) ([]model.Story, error) {
	var list []model.Story
	err := r.DB.Where("author_id = ?", authorID).
		Order("week_id DESC").Find(&list).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return list, nil
}
