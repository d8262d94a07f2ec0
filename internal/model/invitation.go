package model

import "time"

// 邀请状态
const (
	InvitationPending   int8 = 0
	InvitationAccepted  int8 = 1
	InvitationDeclined  int8 = 2
	InvitationCancelled int8 = 3
	InvitationExpired   int8 = 4
)

type Invitation struct {
	ID        uint64 `gorm:"primaryKey"`
	FromUser  uint64 `gorm:"not null;index:idx_from_user"`
	ToContact string `gorm:"size:64;not null;index:idx_contact_status,priority:1"`
	Status    int8   `gorm:"not null;default:0;index:idx_contact_status,priority:2;comment:'0=pending,1=accepted,2=declined,3=cancelled,4=expired'"`
	// OpenKey 生效中的邀请占用 "from:contact"，关闭时置 NULL 释放组合。
	// 唯一索引保证同一组合上至多一条生效邀请，NULL 不参与唯一性。
	OpenKey   *string `gorm:"size:90;uniqueIndex:uk_open_invitation"`
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Invitation) TableName() string { return "invitations" }

// Open pending 且未过期的邀请才算占用 (from, to) 这对组合
func (i *Invitation) Open(now time.Time) bool {
	if i.Status == InvitationAccepted {
		return true
	}
	if i.Status != InvitationPending {
		return false
	}
	return i.ExpiresAt == nil || now.Before(*i.ExpiresAt)
}
