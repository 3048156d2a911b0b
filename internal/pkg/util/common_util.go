package util

import (
	"math"
	"strconv"
	"time"
)

// MonthBounds 返回指定月份的起止时间（UTC，闭区间）
func MonthBounds(year int, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// GetMidnight 获取指定时间的零点（UTC）
func GetMidnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RoundCents 金额四舍五入到分
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// StrSliceToInt64Slice 字符串切片转 int64 切片
func StrSliceToInt64Slice(in []string) ([]int64, error) {
	out := make([]int64, 0, len(in))
	for _, s := range in {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// MinTime 返回较早的时间
func MinTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// MaxTime 返回较晚的时间
func MaxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
