package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"acta_diurna/internal/model"
	"acta_diurna/internal/pkg"
)

func submitStory(t *testing.T, db *gorm.DB, author *model.User, week, title string, headline bool, at time.Time) *model.Story {
	t.Helper()
	story := &model.Story{
		AuthorID:    author.ID,
		AuthorName:  author.FullName,
		WeekID:      week,
		Title:       title,
		Headline:    "h: " + title,
		Body:        "body of " + title,
		IsHeadline:  headline,
		State:       model.StorySubmitted,
		SubmittedAt: &at,
	}
	if err := db.Create(story).Error; err != nil {
		t.Fatalf("submit story %s: %v", title, err)
	}
	return story
}

func newDigestSvc(t *testing.T, db *gorm.DB, at time.Time) *DigestService {
	t.Helper()
	svc := NewDigestService(db, nil, time.UTC)
	svc.now = fixedClock(at)
	return svc
}

func TestDigestAggregation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	alice := newTestUser(t, db, "alice@example.com", "Alice")
	bob := newTestUser(t, db, "bob@example.com", "Bob")
	carol := newTestUser(t, db, "carol@example.com", "Carol")
	dave := newTestUser(t, db, "dave@example.com", "Dave")
	linkUsers(t, db, alice.ID, bob.ID)
	linkUsers(t, db, alice.ID, carol.ID)

	// 头条最后提交，非头条按提交时间有先后；dave 不在圈内
	submitStory(t, db, carol, "2026-W10", "carol-story", false, base.Add(8*time.Hour))
	submitStory(t, db, alice, "2026-W10", "alice-story", false, base.Add(9*time.Hour))
	submitStory(t, db, bob, "2026-W10", "bob-story", true, base.Add(10*time.Hour))
	submitStory(t, db, dave, "2026-W10", "dave-story", false, base)

	svc := newDigestSvc(t, db, base.Add(48*time.Hour))

	d, err := svc.GetOrGenerate(ctx, alice.ID, "2026-W10")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if d.EffectiveWeek != "2026-W10" || d.StoryCount != 3 || d.AuthorCount != 3 {
		t.Fatalf("digest = %+v", d)
	}

	stories, err := d.DecodeStories()
	if err != nil {
		t.Fatal(err)
	}
	// 头条在前，其余按提交时间升序
	want := []string{"bob-story", "carol-story", "alice-story"}
	for i, w := range want {
		if stories[i].Title != w {
			t.Fatalf("story[%d] = %s, want %s (all: %+v)", i, stories[i].Title, w, stories)
		}
	}
}

func TestDigestIdempotence(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	alice := newTestUser(t, db, "alice@example.com", "Alice")
	bob := newTestUser(t, db, "bob@example.com", "Bob")
	linkUsers(t, db, alice.ID, bob.ID)
	submitStory(t, db, bob, "2026-W10", "bob-story", false, base)

	svc := newDigestSvc(t, db, base.Add(48*time.Hour))

	first, err := svc.GetOrGenerate(ctx, alice.ID, "2026-W10")
	if err != nil {
		t.Fatal(err)
	}

	// 生成之后圈子变了也不影响已有周报
	carol := newTestUser(t, db, "carol@example.com", "Carol")
	linkUsers(t, db, alice.ID, carol.ID)
	submitStory(t, db, carol, "2026-W10", "carol-story", false, base.Add(time.Hour))

	second, err := svc.GetOrGenerate(ctx, alice.ID, "2026-W10")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID || second.StoryCount != 1 {
		t.Fatalf("digest changed: first=%+v second=%+v", first, second)
	}

	// 显式重算才会看到新投稿
	fresh, err := svc.Regenerate(ctx, alice.ID, "2026-W10")
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if fresh.StoryCount != 2 || fresh.AuthorCount != 2 {
		t.Fatalf("regenerated digest = %+v", fresh)
	}
}

func TestDigestFallback(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	alice := newTestUser(t, db, "alice@example.com", "Alice")
	bob := newTestUser(t, db, "bob@example.com", "Bob")
	linkUsers(t, db, alice.ID, bob.ID)
	submitStory(t, db, bob, "2026-W10", "bob-story", false, base)

	svc := newDigestSvc(t, db, base.Add(21*24*time.Hour))

	// 请求的周没有投稿，回退到最近有投稿的 2026-W10
	d, err := svc.GetOrGenerate(ctx, alice.ID, "2026-W12")
	if err != nil {
		t.Fatal(err)
	}
	if d.RequestedWeek != "2026-W12" || d.EffectiveWeek != "2026-W10" || d.StoryCount != 1 {
		t.Fatalf("fallback digest = %+v", d)
	}

	// 只回退不前进：更早的周看不到未来的投稿，空周报照样落库
	empty, err := svc.GetOrGenerate(ctx, alice.ID, "2026-W05")
	if err != nil {
		t.Fatal(err)
	}
	if empty.EffectiveWeek != "2026-W05" || empty.StoryCount != 0 {
		t.Fatalf("empty digest = %+v", empty)
	}
	again, err := svc.GetOrGenerate(ctx, alice.ID, "2026-W05")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != empty.ID {
		t.Fatalf("empty digest not persisted: %d vs %d", again.ID, empty.ID)
	}
}

func TestDigestGetAndArchive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	alice := newTestUser(t, db, "alice@example.com", "Alice")
	svc := newDigestSvc(t, db, base)

	// Get 只读，不触发生成
	if _, err := svc.Get(ctx, alice.ID, "2026-W10"); !errors.Is(err, pkg.ErrNotFound) {
		t.Fatalf("get ungenerated err = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetOrGenerate(ctx, alice.ID, "bogus"); !errors.Is(err, pkg.ErrValidation) {
		t.Fatalf("bad week err = %v, want ErrValidation", err)
	}

	for _, week := range []string{"2026-W09", "2026-W10"} {
		if _, err := svc.GetOrGenerate(ctx, alice.ID, week); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := svc.Get(ctx, alice.ID, "2026-W10"); err != nil {
		t.Fatalf("get generated: %v", err)
	}

	archive, err := svc.Archive(alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(archive) != 2 || archive[0].RequestedWeek != "2026-W10" || archive[1].RequestedWeek != "2026-W09" {
		t.Fatalf("archive = %+v", archive)
	}
}

func TestDigestRemovalAffectsNextGeneration(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	alice := newTestUser(t, db, "alice@example.com", "Alice")
	bob := newTestUser(t, db, "bob@example.com", "Bob")
	linkUsers(t, db, alice.ID, bob.ID)
	submitStory(t, db, bob, "2026-W10", "bob-story", false, base)

	svc := newDigestSvc(t, db, base.Add(48*time.Hour))
	contribSvc := NewContributorService(db)

	d, err := svc.GetOrGenerate(ctx, alice.ID, "2026-W10")
	if err != nil || d.StoryCount != 1 {
		t.Fatalf("digest = %+v, err = %v", d, err)
	}

	if err := contribSvc.Remove(alice.ID, bob.ID); err != nil {
		t.Fatal(err)
	}

	// 移除供稿人后重算，稿件不再出现
	fresh, err := svc.Regenerate(ctx, alice.ID, "2026-W10")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.StoryCount != 0 {
		t.Fatalf("digest after removal = %+v", fresh)
	}
}
