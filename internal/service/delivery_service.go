package service

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"acta_diurna/internal/pkg"
	"acta_diurna/internal/repository/mysql"
)

// DeliveryService 每周发刊：到了发布时刻就给每个活跃用户
// 生成（或取出）周报并发邮件。
type DeliveryService struct {
	users    *mysql.UserRepository
	digests  *DigestService
	emailCfg pkg.SMTPConfig
	interval time.Duration
	loc      *time.Location
	now      func() time.Time

	lastWeek string // 上次已发刊的周，防止同一周重复发
}

func NewDeliveryService(db *gorm.DB, digests *DigestService, emailCfg pkg.SMTPConfig, loc *time.Location) *DeliveryService {
	return &DeliveryService{
		users:    &mysql.UserRepository{DB: db},
		digests:  digests,
		emailCfg: emailCfg,
		interval: time.Hour,
		loc:      loc,
		now:      time.Now,
	}
}

// Run 发刊定时任务启动器
func (s *DeliveryService) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.tickOnce(ctx)
		}
	}
}

func (s *DeliveryService) tickOnce(ctx context.Context) {
	now := s.now()
	week := pkg.WeekIDOf(now, s.loc)
	if week == s.lastWeek {
		return
	}
	published, err := pkg.IsPublished(now, week, s.loc)
	if err != nil || !published {
		return
	}
	sent, failed := s.DeliverWeek(ctx, week)
	log.Printf("digest delivery week=%s sent=%d failed=%d", week, sent, failed)
	s.lastWeek = week
}

// DeliverWeek 给全部活跃用户投递某一周的周报。
// 单个用户失败只记数，不中断整轮投递。
func (s *DeliveryService) DeliverWeek(ctx context.Context, weekID string) (sent, failed int) {
	users, err := s.users.ListAll()
	if err != nil {
		log.Printf("delivery list users err: %v", err)
		return 0, 0
	}
	for i := range users {
		u := &users[i]
		d, err := s.digests.GetOrGenerate(ctx, u.ID, weekID)
		if err != nil {
			log.Printf("delivery generate err user=%d week=%s: %v", u.ID, weekID, err)
			failed++
			continue
		}
		html, err := pkg.DigestHTML(d)
		if err != nil {
			log.Printf("delivery render err user=%d week=%s: %v", u.ID, weekID, err)
			failed++
			continue
		}
		if s.emailCfg.Host == "" {
			sent++
			continue
		}
		if err := pkg.SendEmail(s.emailCfg, u.Email, "Your Weekly Chronicle - "+d.EffectiveWeek, html); err != nil {
			log.Printf("delivery send err user=%d: %v", u.ID, err)
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}
