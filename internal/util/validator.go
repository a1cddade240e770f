package util

import (
	"fmt"
	"math"
	"time"

	"github.com/shockonlant/LunaTrack/internal/models"
)

// ValidateAmount 验证量：必须是 0~50 的整数。
// 前端传 JSON 数字进来是 float64，这里顺带挡掉 3.5 这类小数。
func ValidateAmount(amount float64) (int, error) {
	if amount != math.Trunc(amount) {
		return 0, fmt.Errorf("amount must be an integer, got %v", amount)
	}
	v := int(amount)
	if v < 0 || v > 50 {
		return 0, fmt.Errorf("amount out of range [0,50], got %d", v)
	}
	return v, nil
}

// datetimeLayouts 是记录时间接受的格式，从严到宽依次尝试
var datetimeLayouts = []string{
	time.RFC3339,          // 2025-12-03T00:00:00+08:00
	"2006-01-02T15:04:05", // 2025-12-03T00:00:00
	"2006-01-02 15:04:05",
	"2006-01-02", // 2025-12-03
}

// ParseDatetime 解析记录时间字符串，不带时区的按本地时区处理。
func ParseDatetime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("datetime is empty")
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime format: %q", s)
}

// ValidateMemo 验证备注长度（备注可以为空）。
func ValidateMemo(memo string) error {
	if len(memo) > models.MemoMaxBytes {
		return fmt.Errorf("memo too long, max %d bytes", models.MemoMaxBytes)
	}
	return nil
}
