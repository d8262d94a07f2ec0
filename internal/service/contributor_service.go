package service

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"acta_diurna/internal/pkg"
	"acta_diurna/internal/repository/mysql"
)

type ContributorService struct {
	edges *mysql.ContributorRepository
	users *mysql.UserRepository
	now   func() time.Time
}

func NewContributorService(db *gorm.DB) *ContributorService {
	return &ContributorService{
		edges: &mysql.ContributorRepository{DB: db},
		users: &mysql.UserRepository{DB: db},
		now:   time.Now,
	}
}

// ContributorView 对外展示的供稿人信息
type ContributorView struct {
	UserID   uint64 `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// List 当前用户的供稿人。关系是无序对，天然对称。
func (s *ContributorService) List(userID uint64) ([]ContributorView, error) {
	ids, err := s.edges.ListContributorIDs(userID)
	if err != nil {
		return nil, err
	}
	views := make([]ContributorView, 0, len(ids))
	for _, id := range ids {
		u, err := s.users.FindByID(id)
		if err != nil {
			// 用户被停用也不破坏列表
			continue
		}
		views = append(views, ContributorView{UserID: u.ID, FullName: u.FullName, Email: u.Email})
	}
	return views, nil
}

// ListIDs 聚合用的裸 ID 列表
func (s *ContributorService) ListIDs(userID uint64) ([]uint64, error) {
	return s.edges.ListContributorIDs(userID)
}

// Remove 解除双方的供稿关系，单条边删除即同时断掉两个方向
func (s *ContributorService) Remove(ownerID, contributorID uint64) error {
	if ownerID == 0 || contributorID == 0 {
		return fmt.Errorf("%w: invalid user id", pkg.ErrValidation)
	}
	if ownerID == contributorID {
		return fmt.Errorf("%w: cannot remove yourself", pkg.ErrValidation)
	}
	return s.edges.Unlink(ownerID, contributorID, s.now())
}

// IsLinked 查询两人是否互为供稿人
func (s *ContributorService) IsLinked(a, b uint64) (bool, error) {
	return s.edges.Exists(a, b)
}
