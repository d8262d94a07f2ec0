package model

import "time"

// 事件类型
const (
	EventContributorAdded   = "contributor_added"
	EventContributorRemoved = "contributor_removed"
	EventDigestGenerated    = "digest_generated"
)

// DigestOutbox 事件外发表，和业务写入同一事务落库，由 relayer 异步投递
type DigestOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:32;not null"`
	OwnerID   uint64 `gorm:"not null"`
	SubjectID uint64 `gorm:"not null"`
	Payload   string `gorm:"type:json;not null"`
	Status    int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DigestOutbox) TableName() string { return "digest_outbox" }
