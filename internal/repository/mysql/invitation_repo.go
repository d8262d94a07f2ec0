package mysql

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"acta_diurna/internal/model"
	"acta_diurna/internal/pkg"
)

type InvitationRepository struct {
	DB *gorm.DB
}

// FindOpen 查 (from, toContact) 这对组合上尚在生效的邀请。
// pending 但已过期的顺手标成 expired，不再占用组合。
func (r *InvitationRepository) FindOpen(fromUser uint64, toContact string, now time.Time) (*model.Invitation, error) {
	var list []model.Invitation
	err := r.DB.
		Where("from_user = ? AND to_contact = ? AND status IN ?", fromUser, toContact,
			[]int8{model.InvitationPending, model.InvitationAccepted}).
		Find(&list).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	for i := range list {
		inv := &list[i]
		if inv.Open(now) {
			return inv, nil
		}
		if inv.Status == model.InvitationPending {
			// 懒过期：guard 在 pending 上，避免覆盖并发的接受操作
			_ = r.DB.Model(&model.Invitation{}).
				Where("id = ? AND status = ?", inv.ID, model.InvitationPending).
				Updates(map[string]any{"status": model.InvitationExpired, "open_key": nil}).Error
		}
	}
	return nil, nil
}

// Create 新邀请落库即占用 open_key，业务层先查后插之外由唯一索引兜底，
// 并发重复发送输家在这里拿到 DuplicateInvitation。
func (r *InvitationRepository) Create(inv *model.Invitation) error {
	key := openKey(inv.FromUser, inv.ToContact)
	inv.OpenKey = &key
	if err := r.DB.Create(inv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return pkg.ErrDuplicateInvitation
		}
		return wrapStoreErr(err)
	}
	return nil
}

func openKey(fromUser uint64, toContact string) string {
	return fmt.Sprintf("%d:%s", fromUser, toContact)
}

func (r *InvitationRepository) FindByID(id uint64) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.DB.First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return &inv, nil
}

// Accept 接受邀请：建边 + 改状态 + 写事件，一个事务内完成。
// 状态更新带 pending guard，两个并发接受只有一个能成功。
func (r *InvitationRepository) Accept(inv *model.Invitation, acceptingUser uint64, now time.Time) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Invitation{}).
			Where("id = ? AND status = ?", inv.ID, model.InvitationPending).
			Update("status", model.InvitationAccepted)
		if res.Error != nil {
			return wrapStoreErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return pkg.ErrNotFound
		}

		a, b := inv.FromUser, acceptingUser
		edge := &model.ContributorEdge{
			PairKey: pkg.PairKey(a, b),
			UserA:   min(a, b),
			UserB:   max(a, b),
		}
		if err := tx.Create(edge).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// 这对用户已经互为供稿人，算可检测到的不一致，整个事务回滚
				return pkg.ErrAlreadyLinked
			}
			return wrapStoreErr(err)
		}

		return insertOutbox(tx, model.EventContributorAdded, inv.FromUser, acceptingUser, now)
	})
}

// UpdateStatus pending -> declined/cancelled/expired 的受控迁移，
// 进入关闭状态同时释放 open_key 占用的组合
func (r *InvitationRepository) UpdateStatus(id uint64, to int8) error {
	res := r.DB.Model(&model.Invitation{}).
		Where("id = ? AND status = ?", id, model.InvitationPending).
		Updates(map[string]any{"status": to, "open_key": nil})
	if res.Error != nil {
		return wrapStoreErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return pkg.ErrNotFound
	}
	return nil
}

// ListIncoming 收到的 pending 邀请（按联系方式匹配）
func (r *InvitationRepository) ListIncoming(toContact string) ([]model.Invitation, error) {
	var list []model.Invitation
	err := r.DB.
		Where("to_contact = ? AND status = ?", toContact, model.InvitationPending).
		Order("id DESC").Find(&list).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return list, nil
}

// ListOutgoing 发出的全部邀请
func (r *InvitationRepository) ListOutgoing(fromUser uint64) ([]model.Invitation, error) {
	var list []model.Invitation
	err := r.DB.Where("from_user = ?", fromUser).Order("id DESC").Find(&list).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return list, nil
}

func insertOutbox(tx *gorm.DB, event string, ownerID, subjectID uint64, now time.Time) error {
	payload, _ := json.Marshal(map[string]any{
		"event_time": now.UTC().Format(time.RFC3339Nano),
		"owner":      ownerID,
		"subject":    subjectID,
	})
	ob := &model.DigestOutbox{
		EventType: event,
		OwnerID:   ownerID,
		SubjectID: subjectID,
		Payload:   string(payload),
		Status:    0,
	}
	if err := tx.Create(ob).Error; err != nil {
		return wrapStoreErr(err)
	}
	return nil
}
