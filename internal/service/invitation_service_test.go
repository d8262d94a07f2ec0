package service

import (
	"errors"
	"testing"
	"time"

	"acta_diurna/internal/model"
	"acta_diurna/internal/pkg"
	"acta_diurna/internal/repository/mysql"
)

func TestInvitationLifecycle(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	alice := newTestUser(t, db, "alice@example.com", "Alice")
	bob := newTestUser(t, db, "bob@example.com", "Bob")

	invSvc := NewInvitationService(db, pkg.SMTPConfig{})
	invSvc.now = fixedClock(now)
	contribSvc := NewContributorService(db)

	inv, err := invSvc.Send(alice.ID, "Bob@Example.com", "join me")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if inv.Status != model.InvitationPending {
		t.Fatalf("status = %d, want pending", inv.Status)
	}
	if inv.ToContact != "bob@example.com" {
		t.Fatalf("contact not normalized: %q", inv.ToContact)
	}

	// 同一组合重复发送被拒
	if _, err := invSvc.Send(alice.ID, "bob@example.com", ""); !errors.Is(err, pkg.ErrDuplicateInvitation) {
		t.Fatalf("duplicate send err = %v, want ErrDuplicateInvitation", err)
	}

	// 自邀被拒
	if _, err := invSvc.Send(alice.ID, "alice@example.com", ""); !errors.Is(err, pkg.ErrValidation) {
		t.Fatalf("self invite err = %v, want ErrValidation", err)
	}

	// 非收件人不能接受
	if err := invSvc.Accept(inv.ID, alice.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("accept by wrong user err = %v, want ErrNotFound", err)
	}

	if err := invSvc.Accept(inv.ID, bob.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// 接受后关系对两边同时可见
	aliceIDs, err := contribSvc.ListIDs(alice.ID)
	if err != nil || len(aliceIDs) != 1 || aliceIDs[0] != bob.ID {
		t.Fatalf("alice contributors = %v, err = %v", aliceIDs, err)
	}
	bobIDs, err := contribSvc.ListIDs(bob.ID)
	if err != nil || len(bobIDs) != 1 || bobIDs[0] != alice.ID {
		t.Fatalf("bob contributors = %v, err = %v", bobIDs, err)
	}

	// 再次接受同一邀请（已不是 pending）
	if err := invSvc.Accept(inv.ID, bob.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("re-accept err = %v, want ErrNotFound", err)
	}

	// 已互为供稿人后反向邀请再接受被拒
	inv2, err := invSvc.Send(bob.ID, "alice@example.com", "")
	if err != nil {
		t.Fatalf("reverse send: %v", err)
	}
	if err := invSvc.Accept(inv2.ID, alice.ID); !errors.Is(err, pkg.ErrAlreadyLinked) {
		t.Fatalf("accept while linked err = %v, want ErrAlreadyLinked", err)
	}
}

func TestInvitationDuplicateIndexBacked(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	alice := newTestUser(t, db, "alice@example.com", "Alice")
	newTestUser(t, db, "bob@example.com", "Bob")

	invSvc := NewInvitationService(db, pkg.SMTPConfig{})
	invSvc.now = fixedClock(now)

	if _, err := invSvc.Send(alice.ID, "bob@example.com", ""); err != nil {
		t.Fatalf("send: %v", err)
	}

	// 绕过业务层的先查后插，直接写仓储：并发重复发送的输家
	// 必须被 open_key 唯一索引挡下来，而不是靠前置检查
	repo := &mysql.InvitationRepository{DB: db}
	exp := now.Add(InvitationTTL)
	dup := &model.Invitation{
		FromUser:  alice.ID,
		ToContact: "bob@example.com",
		Status:    model.InvitationPending,
		ExpiresAt: &exp,
	}
	if err := repo.Create(dup); !errors.Is(err, pkg.ErrDuplicateInvitation) {
		t.Fatalf("concurrent create err = %v, want ErrDuplicateInvitation", err)
	}

	// 不同发起人对同一联系人不受影响
	carol := newTestUser(t, db, "carol@example.com", "Carol")
	if _, err := invSvc.Send(carol.ID, "bob@example.com", ""); err != nil {
		t.Fatalf("send from another user: %v", err)
	}
}

func TestInvitationExpiry(t *testing.T) {
	db := newTestDB(t)
	sent := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	alice := newTestUser(t, db, "alice@example.com", "Alice")
	bob := newTestUser(t, db, "bob@example.com", "Bob")

	invSvc := NewInvitationService(db, pkg.SMTPConfig{})
	invSvc.now = fixedClock(sent)

	inv, err := invSvc.Send(alice.ID, "bob@example.com", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	// TTL 过后接受失败，邀请被懒标记为 expired
	invSvc.now = fixedClock(sent.Add(InvitationTTL + time.Hour))
	if err := invSvc.Accept(inv.ID, bob.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("accept expired err = %v, want ErrNotFound", err)
	}
	var got model.Invitation
	if err := db.First(&got, inv.ID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Status != model.InvitationExpired {
		t.Fatalf("status = %d, want expired", got.Status)
	}

	// 组合释放后可以重新邀请
	if _, err := invSvc.Send(alice.ID, "bob@example.com", ""); err != nil {
		t.Fatalf("resend after expiry: %v", err)
	}
}

func TestInvitationDeclineAndCancel(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	alice := newTestUser(t, db, "alice@example.com", "Alice")
	bob := newTestUser(t, db, "bob@example.com", "Bob")

	invSvc := NewInvitationService(db, pkg.SMTPConfig{})
	invSvc.now = fixedClock(now)

	inv, err := invSvc.Send(alice.ID, "bob@example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	// 只有发起人能撤回
	if err := invSvc.Cancel(inv.ID, bob.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("cancel by stranger err = %v, want ErrNotFound", err)
	}
	if err := invSvc.Decline(inv.ID, bob.ID); err != nil {
		t.Fatalf("decline: %v", err)
	}
	// 拒绝后组合释放
	inv2, err := invSvc.Send(alice.ID, "bob@example.com", "")
	if err != nil {
		t.Fatalf("resend after decline: %v", err)
	}
	if err := invSvc.Cancel(inv2.ID, alice.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}

func TestContributorRemove(t *testing.T) {
	db := newTestDB(t)

	alice := newTestUser(t, db, "alice@example.com", "Alice")
	bob := newTestUser(t, db, "bob@example.com", "Bob")
	linkUsers(t, db, alice.ID, bob.ID)

	svc := NewContributorService(db)

	linked, err := svc.IsLinked(bob.ID, alice.ID)
	if err != nil || !linked {
		t.Fatalf("IsLinked = %v, err = %v", linked, err)
	}

	// 任意一侧都能解除，一次解除两个方向都断
	if err := svc.Remove(bob.ID, alice.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	for _, id := range []uint64{alice.ID, bob.ID} {
		ids, err := svc.ListIDs(id)
		if err != nil || len(ids) != 0 {
			t.Fatalf("contributors of %d = %v, err = %v", id, ids, err)
		}
	}

	if err := svc.Remove(alice.ID, bob.ID); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("remove twice err = %v, want ErrNotFound", err)
	}
	if err := svc.Remove(alice.ID, alice.ID); !errors.Is(err, pkg.ErrValidation) {
		t.Fatalf("remove self err = %v, want ErrValidation", err)
	}
}
