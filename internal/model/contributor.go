package model

import "time"

// ContributorEdge 供稿关系，一条记录代表一对用户的双向关系。
// pair_key 用无序对规范键（小ID:大ID），唯一索引保证同一对用户只有一条边，
// 不存在"只写了一个方向"的中间状态。
type ContributorEdge struct {
	ID        uint64 `gorm:"primaryKey"`
	PairKey   string `gorm:"uniqueIndex;size:48;not null"`
	UserA     uint64 `gorm:"not null;index:idx_user_a"`
	UserB     uint64 `gorm:"not null;index:idx_user_b"`
	CreatedAt time.Time
}

func (ContributorEdge) TableName() string { return "contributor_edges" }

// Other 返回这条边上另一侧的用户
func (e *ContributorEdge) Other(userID uint64) uint64 {
	if e.UserA == userID {
		return e.UserB
	}
	return e.UserA
}
