package utils

import (
	"fmt"
	"math"
	"time"
)

// 日期统一按 ISO 格式（YYYY-MM-DD）的字符串存储与传输。
const DateLayout = "2006-01-02"

// ParseDate 解析 ISO 日期字符串。
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected %s", s, DateLayout)
	}
	return t, nil
}

// WeeksBetween 计算两个 ISO 日期之间的整周数（向上取整）。
// durationInWeeks 始终由该函数推导，客户端给定的值会被忽略。
func WeeksBetween(startDate, endDate string) (int, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return 0, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return 0, err
	}
	days := end.Sub(start).Hours() / 24
	if days < 0 {
		return 0, fmt.Errorf("startDate %s is after endDate %s", startDate, endDate)
	}
	return int(math.Ceil(days / 7)), nil
}
