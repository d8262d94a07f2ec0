package pkg

import (
	"errors"
	"testing"
	"time"
)

func TestWeekIDOf(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC), "2026-W10"},
		// 跨年：2025-12-31 已经属于 2026 年第 1 周
		{time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC), "2026-W01"},
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W01"},
		// 2020 年有 53 周
		{time.Date(2020, 12, 30, 0, 0, 0, 0, time.UTC), "2020-W53"},
	}
	for _, c := range cases {
		if got := WeekIDOf(c.at, time.UTC); got != c.want {
			t.Errorf("WeekIDOf(%v) = %s, want %s", c.at, got, c.want)
		}
	}
}

func TestParseWeekID(t *testing.T) {
	if y, w, err := ParseWeekID("2026-W05"); err != nil || y != 2026 || w != 5 {
		t.Fatalf("ParseWeekID(2026-W05) = %d, %d, %v", y, w, err)
	}
	for _, bad := range []string{"", "2026W05", "2026-W0", "2026-W54", "26-W05", "2026-Wab"} {
		if _, _, err := ParseWeekID(bad); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseWeekID(%q) err = %v, want ErrValidation", bad, err)
		}
	}
}

func TestMondayOf(t *testing.T) {
	cases := []struct {
		weekID string
		want   time.Time
	}{
		{"2026-W10", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		// 2026-W01 的周一落在 2025 年内
		{"2026-W01", time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)},
		{"2025-W01", time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)},
		{"2020-W53", time.Date(2020, 12, 28, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := MondayOf(c.weekID, time.UTC)
		if err != nil {
			t.Fatalf("MondayOf(%s): %v", c.weekID, err)
		}
		if !got.Equal(c.want) {
			t.Errorf("MondayOf(%s) = %v, want %v", c.weekID, got, c.want)
		}
	}
}

func TestDeadlineAndPublish(t *testing.T) {
	deadline, err := Deadline("2026-W10", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC); !deadline.Equal(want) {
		t.Errorf("Deadline = %v, want %v", deadline, want)
	}

	pub, err := PublishAt("2026-W10", time.UTC)
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC); !pub.Equal(want) {
		t.Errorf("PublishAt = %v, want %v", pub, want)
	}
}

func TestSubmissionWindow(t *testing.T) {
	deadline := time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC)

	open, err := IsSubmissionOpen(deadline.Add(-time.Hour), "2026-W10", time.UTC)
	if err != nil || !open {
		t.Errorf("before deadline: open = %v, err = %v", open, err)
	}
	open, err = IsSubmissionOpen(deadline, "2026-W10", time.UTC)
	if err != nil || open {
		t.Errorf("at deadline: open = %v, err = %v", open, err)
	}

	published, err := IsPublished(deadline.Add(time.Hour), "2026-W10", time.UTC)
	if err != nil || published {
		t.Errorf("before publish: published = %v, err = %v", published, err)
	}
	published, err = IsPublished(time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC), "2026-W10", time.UTC)
	if err != nil || !published {
		t.Errorf("at publish: published = %v, err = %v", published, err)
	}
}

func TestPrevWeekID(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2026-W10", "2026-W09"},
		// 跨年回退
		{"2026-W01", "2025-W52"},
		{"2021-W01", "2020-W53"},
	}
	for _, c := range cases {
		got, err := PrevWeekID(c.in, time.UTC)
		if err != nil {
			t.Fatalf("PrevWeekID(%s): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("PrevWeekID(%s) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestCompareWeekID(t *testing.T) {
	// 补零保证字典序即时间序，包括 52/53 -> 01 的跨年
	ordered := []string{"2020-W52", "2020-W53", "2021-W01", "2021-W02", "2021-W10"}
	for i := 1; i < len(ordered); i++ {
		if CompareWeekID(ordered[i-1], ordered[i]) >= 0 {
			t.Errorf("CompareWeekID(%s, %s) >= 0", ordered[i-1], ordered[i])
		}
	}
}
