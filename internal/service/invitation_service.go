package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"acta_diurna/internal/model"
	"acta_diurna/internal/pkg"
	"acta_diurna/internal/repository/mysql"
)

// InvitationTTL pending 邀请的有效期，过期后懒标记为 expired
const InvitationTTL = 14 * 24 * time.Hour

type InvitationService struct {
	repo     *mysql.InvitationRepository
	edges    *mysql.ContributorRepository
	users    *mysql.UserRepository
	emailCfg pkg.SMTPConfig
	now      func() time.Time
}

func NewInvitationService(db *gorm.DB, emailCfg pkg.SMTPConfig) *InvitationService {
	return &InvitationService{
		repo:     &mysql.InvitationRepository{DB: db},
		edges:    &mysql.ContributorRepository{DB: db},
		users:    &mysql.UserRepository{DB: db},
		emailCfg: emailCfg,
		now:      time.Now,
	}
}

// Send 发出邀请。同一个 (发起人, 联系方式) 组合上已有 pending/accepted
// 邀请时拒绝重复发送。
func (s *InvitationService) Send(fromUser uint64, toContact, message string) (*model.Invitation, error) {
	toContact = strings.ToLower(strings.TrimSpace(toContact))
	if fromUser == 0 || toContact == "" {
		return nil, fmt.Errorf("%w: contact required", pkg.ErrValidation)
	}

	from, err := s.users.FindByID(fromUser)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(from.Email, toContact) {
		return nil, fmt.Errorf("%w: cannot invite yourself", pkg.ErrValidation)
	}

	open, err := s.repo.FindOpen(fromUser, toContact, s.now())
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, pkg.ErrDuplicateInvitation
	}

	exp := s.now().Add(InvitationTTL)
	inv := &model.Invitation{
		FromUser:  fromUser,
		ToContact: toContact,
		Status:    model.InvitationPending,
		ExpiresAt: &exp,
	}
	if err := s.repo.Create(inv); err != nil {
		return nil, err
	}

	// 邀请邮件尽力而为，发送失败不影响邀请本身
	if s.emailCfg.Host != "" {
		html := pkg.InvitationHTML(from.FullName, message)
		if err := pkg.SendEmail(s.emailCfg, toContact, "You're invited to Acta Diurna", html); err != nil {
			log.Printf("invitation email to %s failed: %v", toContact, err)
		}
	}
	return inv, nil
}

// Accept 接受邀请。必须是邀请的收件人；建边和状态迁移在仓储层
// 同一事务完成，任何一侧失败整体回滚。
func (s *InvitationService) Accept(invitationID, acceptingUser uint64) error {
	user, err := s.users.FindByID(acceptingUser)
	if err != nil {
		return err
	}
	inv, err := s.repo.FindByID(invitationID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(inv.ToContact, user.Email) {
		// 不是发给这个用户的，等同不存在
		return pkg.ErrNotFound
	}
	if inv.Status != model.InvitationPending {
		return pkg.ErrNotFound
	}
	if inv.ExpiresAt != nil && !s.now().Before(*inv.ExpiresAt) {
		_ = s.repo.UpdateStatus(inv.ID, model.InvitationExpired)
		return pkg.ErrNotFound
	}

	linked, err := s.edges.Exists(inv.FromUser, acceptingUser)
	if err != nil {
		return err
	}
	if linked {
		return pkg.ErrAlreadyLinked
	}

	return s.repo.Accept(inv, acceptingUser, s.now())
}

// Decline 收件人拒绝
func (s *InvitationService) Decline(invitationID, decliningUser uint64) error {
	user, err := s.users.FindByID(decliningUser)
	if err != nil {
		return err
	}
	inv, err := s.repo.FindByID(invitationID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(inv.ToContact, user.Email) {
		return pkg.ErrNotFound
	}
	return s.repo.UpdateStatus(inv.ID, model.InvitationDeclined)
}

// Cancel 发起人撤回
func (s *InvitationService) Cancel(invitationID, fromUser uint64) error {
	inv, err := s.repo.FindByID(invitationID)
	if err != nil {
		return err
	}
	if inv.FromUser != fromUser {
		return pkg.ErrNotFound
	}
	return s.repo.UpdateStatus(inv.ID, model.InvitationCancelled)
}

// ListIncoming 当前用户收到的待处理邀请
func (s *InvitationService) ListIncoming(userID uint64) ([]model.Invitation, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListIncoming(user.Email)
}

// ListOutgoing 当前用户发出的邀请
func (s *InvitationService) ListOutgoing(userID uint64) ([]model.Invitation, error) {
	return s.repo.ListOutgoing(userID)
}
