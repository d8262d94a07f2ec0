package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"acta_diurna/internal/model"
	"acta_diurna/internal/pkg"
	"acta_diurna/internal/repository/mysql"
	redisrepo "acta_diurna/internal/repository/redis"
)

// DigestService 周报聚合。真相只有一份：MySQL 里 (owner, week) 唯一的
// digest 行；redis 只是读缓存，生成路径上的并发由唯一约束裁决。
type DigestService struct {
	digests *mysql.DigestRepository
	stories *mysql.StoryRepository
	edges   *mysql.ContributorRepository
	cache   *redisrepo.DigestCache // 可为 nil（测试环境）
	loc     *time.Location
	now     func() time.Time
}

func NewDigestService(db *gorm.DB, cache *redisrepo.DigestCache, loc *time.Location) *DigestService {
	return &DigestService{
		digests: &mysql.DigestRepository{DB: db},
		stories: &mysql.StoryRepository{DB: db},
		edges:   &mysql.ContributorRepository{DB: db},
		cache:   cache,
		loc:     loc,
		now:     time.Now,
	}
}

// CurrentWeekID 当前周标识
func (s *DigestService) CurrentWeekID() string {
	return pkg.WeekIDOf(s.now(), s.loc)
}

// GetOrGenerate 取或生成 (owner, week) 的周报。
// 已存在则原样返回，不重算；不存在则聚合供稿圈的投稿：
// 本周没有任何投稿时回退到最近一个有投稿的周（effective week）。
// 空结果也是正常结果，照样落库缓存。
func (s *DigestService) GetOrGenerate(ctx context.Context, ownerID uint64, weekID string) (*model.Digest, error) {
	if _, _, err := pkg.ParseWeekID(weekID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if d, ok := s.cache.Get(ctx, ownerID, weekID); ok {
			return d, nil
		}
	}
	if d, err := s.digests.Find(ownerID, weekID); err != nil {
		return nil, err
	} else if d != nil {
		if s.cache != nil {
			s.cache.Set(ctx, d)
		}
		return d, nil
	}

	d, err := s.generate(ownerID, weekID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, d)
	}
	return d, nil
}

func (s *DigestService) generate(ownerID uint64, weekID string) (*model.Digest, error) {
	ids, err := s.edges.ListContributorIDs(ownerID)
	if err != nil {
		return nil, err
	}
	// 自己的投稿也进自己的周报
	authors := append(ids, ownerID)

	list, err := s.stories.ListSubmitted(authors, weekID)
	if err != nil {
		return nil, err
	}

	effective := weekID
	if len(list) == 0 {
		// 回退规则：往前找最近一个有投稿的周
		latest, err := s.stories.LatestActiveWeek(authors, weekID)
		if err != nil {
			return nil, err
		}
		if latest != "" && latest != weekID {
			effective = latest
			list, err = s.stories.ListSubmitted(authors, latest)
			if err != nil {
				return nil, err
			}
		}
	}

	snaps := make([]model.DigestStory, 0, len(list))
	seen := make(map[uint64]struct{}, len(list))
	for i := range list {
		st := &list[i]
		var at time.Time
		if st.SubmittedAt != nil {
			at = *st.SubmittedAt
		}
		snaps = append(snaps, model.DigestStory{
			StoryID:     st.ID,
			AuthorID:    st.AuthorID,
			AuthorName:  st.AuthorName,
			Title:       st.Title,
			Headline:    st.Headline,
			Body:        st.Body,
			IsHeadline:  st.IsHeadline,
			SubmittedAt: at,
		})
		seen[st.AuthorID] = struct{}{}
	}

	encoded, err := model.EncodeDigestStories(snaps)
	if err != nil {
		return nil, fmt.Errorf("%w: encode digest stories: %v", pkg.ErrFatal, err)
	}
	d := &model.Digest{
		OwnerID:       ownerID,
		RequestedWeek: weekID,
		EffectiveWeek: effective,
		Stories:       encoded,
		StoryCount:    len(snaps),
		AuthorCount:   len(seen),
		GeneratedAt:   s.now(),
	}

	created, err := s.digests.Insert(d, s.now())
	if err != nil {
		return nil, err
	}
	if !created {
		// 并发生成输了，改读赢家的结果
		winner, err := s.digests.Find(ownerID, weekID)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			return nil, fmt.Errorf("%w: digest vanished after conflict", pkg.ErrTransient)
		}
		return winner, nil
	}
	return d, nil
}

// Regenerate 删掉再生成。getOrGenerate 的缓存会掩盖图和投稿的后续
// 变化，这是刷新的唯一入口。
func (s *DigestService) Regenerate(ctx context.Context, ownerID uint64, weekID string) (*model.Digest, error) {
	if _, _, err := pkg.ParseWeekID(weekID); err != nil {
		return nil, err
	}
	if s.cache != nil {
		// 延迟二删，抵消并发读回填旧值的窗口
		_ = s.cache.Delete(ctx, ownerID, weekID, time.Second)
	}
	if _, err := s.digests.Delete(ownerID, weekID); err != nil {
		return nil, err
	}
	return s.GetOrGenerate(ctx, ownerID, weekID)
}

// Get 只读查询，不存在不触发生成
func (s *DigestService) Get(ctx context.Context, ownerID uint64, weekID string) (*model.Digest, error) {
	if _, _, err := pkg.ParseWeekID(weekID); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if d, ok := s.cache.Get(ctx, ownerID, weekID); ok {
			return d, nil
		}
	}
	d, err := s.digests.Find(ownerID, weekID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, pkg.ErrNotFound
	}
	return d, nil
}

// Archive 历史周报列表，按请求周倒序
func (s *DigestService) Archive(ownerID uint64) ([]model.DigestSummary, error) {
	list, err := s.digests.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	summaries := make([]model.DigestSummary, 0, len(list))
	for i := range list {
		d := &list[i]
		summaries = append(summaries, model.DigestSummary{
			RequestedWeek: d.RequestedWeek,
			EffectiveWeek: d.EffectiveWeek,
			StoryCount:    d.StoryCount,
			AuthorCount:   d.AuthorCount,
			GeneratedAt:   d.GeneratedAt,
		})
	}
	return summaries, nil
}
