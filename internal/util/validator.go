package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail 验证邮箱格式
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// NormalizeKind 把请求里的收支方向统一成小写，返回错误表示取值非法
func NormalizeKind(kind string) (string, error) {
	k := strings.ToLower(strings.TrimSpace(kind))
	if k != "income" && k != "outcome" {
		return "", fmt.Errorf("kind must be income or outcome, got %q", kind)
	}
	return k, nil
}

// ValidateCategory 验证分类名（不能为空且长度合理）
func ValidateCategory(category string) error {
	if category == "" {
		return fmt.Errorf("category is empty")
	}
	if len([]rune(category)) > 64 {
		return fmt.Errorf("category too long, max 64 characters")
	}
	return nil
}

// 交易日期支持的格式，按顺序尝试
var dateLayouts = []string{
	time.RFC3339,          // 2024-03-05T00:00:00+07:00
	"2006-01-02T15:04:05", // 2024-03-05T00:00:00
	"2006-01-02",          // 2024-03-05
}

// ParseDate 解析交易日期字符串
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %s", s)
}

// ParseMonthYear 解析统计接口的 month/year 查询参数
func ParseMonthYear(monthStr, yearStr string) (year int, month int, err error) {
	if monthStr == "" || yearStr == "" {
		return 0, 0, fmt.Errorf("month and year are required")
	}
	month, err = strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month: %s", monthStr)
	}
	year, err = strconv.Atoi(yearStr)
	if err != nil || year < 1970 || year > 9999 {
		return 0, 0, fmt.Errorf("invalid year: %s", yearStr)
	}
	return year, month, nil
}
