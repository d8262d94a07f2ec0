package model

import "time"

// 投稿状态
const (
	StoryDraft     int8 = 0
	StorySubmitted int8 = 1
)

// Story 每个作者每周至多一篇，(author_id, week_id) 唯一。
// draft 原地晋升为 submitted，晋升后不可再改。
type Story struct {
	ID          uint64 `gorm:"primaryKey"`
	AuthorID    uint64 `gorm:"not null;uniqueIndex:uk_author_week,priority:1"`
	AuthorName  string `gorm:"size:64;not null"`
	WeekID      string `gorm:"size:8;not null;uniqueIndex:uk_author_week,priority:2;index:idx_week"`
	Title       string `gorm:"size:200;not null"`
	Headline    string `gorm:"size:200"`
	Body        string `gorm:"type:text"`
	IsHeadline  bool   `gorm:"not null;default:false"`
	State       int8   `gorm:"not null;default:0;comment:'0=draft,1=submitted'"`
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Story) TableName() string { return "stories" }

// StoryImage 投稿附图，按原样存库，外部只拿到不透明的图片ID。
// (story_id, slot) 唯一索引让附件坑位成为表约束，数量上限不靠先查后插。
type StoryImage struct {
	ID          uint64 `gorm:"primaryKey"`
	StoryID     uint64 `gorm:"not null;uniqueIndex:uk_story_slot,priority:1"`
	Slot        int    `gorm:"not null;uniqueIndex:uk_story_slot,priority:2"`
	Filename    string `gorm:"size:255;not null"`
	ContentType string `gorm:"size:64;not null"`
	Size        int64  `gorm:"not null"`
	Data        []byte `gorm:"type:mediumblob"`
	CreatedAt   time.Time
}

func (StoryImage) TableName() string { return "story_images" }
