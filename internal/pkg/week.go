package pkg

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 周标识统一用 "YYYY-WXX"（ISO 周，补零），全系统固定一个时区。
// 补零后字符串的字典序就是周的先后顺序，跨年（52/53 -> 01）也成立。

const (
	// 截稿后到发布的间隔：周一 23:59:59 截稿，周二 08:00:00 整点发布
	publishDelay = 8*time.Hour + time.Second

	DefaultTimeZone = "America/New_York"
)

// WeekIDOf 计算某个时刻所属的周标识
func WeekIDOf(now time.Time, loc *time.Location) string {
	year, week := now.In(loc).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// ParseWeekID 校验并拆出年和周号
func ParseWeekID(weekID string) (year, week int, err error) {
	parts := strings.SplitN(weekID, "-W", 2)
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("%w: bad week id %q", ErrValidation, weekID)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad week id %q", ErrValidation, weekID)
	}
	week, err = strconv.Atoi(parts[1])
	if err != nil || week < 1 || week > 53 {
		return 0, 0, fmt.Errorf("%w: bad week id %q", ErrValidation, weekID)
	}
	return year, week, nil
}

// MondayOf 求该 ISO 周的周一零点。
// 1月4日必然落在第1周，以它为锚点回推周一，再按周数偏移，
// 避免用1月1日推算在跨年周出错。
func MondayOf(weekID string, loc *time.Location) (time.Time, error) {
	year, week, err := ParseWeekID(weekID)
	if err != nil {
		return time.Time{}, err
	}
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	wd := int(jan4.Weekday())
	if wd == 0 {
		wd = 7 // 周日按 ISO 算第 7 天
	}
	firstMonday := jan4.AddDate(0, 0, 1-wd)
	return firstMonday.AddDate(0, 0, (week-1)*7), nil
}

// Deadline 该周投稿截止时刻（周一 23:59:59）
func Deadline(weekID string, loc *time.Location) (time.Time, error) {
	monday, err := MondayOf(weekID, loc)
	if err != nil {
		return time.Time{}, err
	}
	return monday.Add(23*time.Hour + 59*time.Minute + 59*time.Second), nil
}

// PublishAt 该周周报发布时刻（周二 08:00）
func PublishAt(weekID string, loc *time.Location) (time.Time, error) {
	deadline, err := Deadline(weekID, loc)
	if err != nil {
		return time.Time{}, err
	}
	return deadline.Add(publishDelay), nil
}

// IsSubmissionOpen 此刻该周是否还能投稿
func IsSubmissionOpen(now time.Time, weekID string, loc *time.Location) (bool, error) {
	deadline, err := Deadline(weekID, loc)
	if err != nil {
		return false, err
	}
	return now.Before(deadline), nil
}

// IsPublished 此刻该周周报是否已到发布时间
func IsPublished(now time.Time, weekID string, loc *time.Location) (bool, error) {
	pub, err := PublishAt(weekID, loc)
	if err != nil {
		return false, err
	}
	return !now.Before(pub), nil
}

// PrevWeekID 上一周的标识（处理跨年）
func PrevWeekID(weekID string, loc *time.Location) (string, error) {
	monday, err := MondayOf(weekID, loc)
	if err != nil {
		return "", err
	}
	return WeekIDOf(monday.AddDate(0, 0, -7), loc), nil
}

// CompareWeekID 周标识全序比较，<0 表示 a 在 b 之前
func CompareWeekID(a, b string) int {
	return strings.Compare(a, b)
}
