package model

import (
	"encoding/json"
	"time"
)

// Digest 某个用户某一周的周报，(owner_id, requested_week) 唯一。
// 生成后不再修改，想刷新只能删掉重新生成。
type Digest struct {
	ID            uint64 `gorm:"primaryKey"`
	OwnerID       uint64 `gorm:"not null;uniqueIndex:uk_owner_week,priority:1"`
	RequestedWeek string `gorm:"size:8;not null;uniqueIndex:uk_owner_week,priority:2"`
	EffectiveWeek string `gorm:"size:8;not null"`
	Stories       string `gorm:"type:json;not null"`
	StoryCount    int    `gorm:"not null;default:0"`
	AuthorCount   int    `gorm:"not null;default:0"`
	GeneratedAt   time.Time
}

func (Digest) TableName() string { return "digests" }

// DigestStory 周报内的投稿快照，冻结在生成时刻
type DigestStory struct {
	StoryID     uint64    `json:"story_id"`
	AuthorID    uint64    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	Title       string    `json:"title"`
	Headline    string    `json:"headline"`
	Body        string    `json:"body"`
	IsHeadline  bool      `json:"is_headline"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (d *Digest) DecodeStories() ([]DigestStory, error) {
	var list []DigestStory
	if d.Stories == "" {
		return list, nil
	}
	err := json.Unmarshal([]byte(d.Stories), &list)
	return list, err
}

func EncodeDigestStories(list []DigestStory) (string, error) {
	if list == nil {
		list = []DigestStory{}
	}
	b, err := json.Marshal(list)
	return string(b), err
}

// DigestSummary 历史周报列表项
type DigestSummary struct {
	RequestedWeek string    `json:"requested_week"`
	EffectiveWeek string    `json:"effective_week"`
	StoryCount    int       `json:"story_count"`
	AuthorCount   int       `json:"author_count"`
	GeneratedAt   time.Time `json:"generated_at"`
}
