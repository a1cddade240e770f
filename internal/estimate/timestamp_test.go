package estimate

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// ============ EXIF 时间解析 ============

func TestParseExifDatetime_Valid(t *testing.T) {
	got, ok := parseExifDatetime("2024:12:25 14:30:45")
	if !ok {
		t.Fatal("合法的 EXIF 时间应能解析")
	}

	want := time.Date(2024, 12, 25, 14, 30, 45, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("解析结果 %v, want %v", got, want)
	}
	// EXIF 时间按本地时区解释
	if got.Location() != time.Local {
		t.Errorf("时区应为本地时区，得到 %v", got.Location())
	}
}

func TestParseExifDatetime_Malformed(t *testing.T) {
	testCases := []string{
		"",
		"2024-12-25 14:30:45", // 分隔符不对
		"2024:12:25",          // 缺时间部分
		"14:30:45",
		"not a date",
		"2024:13:40 99:99:99", // 数值非法
	}

	for _, s := range testCases {
		if _, ok := parseExifDatetime(s); ok {
			t.Errorf("parseExifDatetime(%q) 应解析失败", s)
		}
	}
}

// ============ 提取与回退 ============

// 没有 EXIF 的文件应静默退回文件修改时间，而不是报错
func TestExtractTimestamp_FallbackToModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	if err := os.WriteFile(path, []byte("not really a jpeg"), 0o600); err != nil {
		t.Fatalf("写测试文件: %v", err)
	}

	mtime := time.Date(2024, 6, 1, 9, 15, 0, 0, time.Local)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("设置修改时间: %v", err)
	}

	res := ExtractTimestamp(path)
	if res.Source != TimestampFileModified {
		t.Errorf("来源应为 fileModified，得到 %s", res.Source)
	}
	if !res.Time.Equal(mtime) {
		t.Errorf("时间应为文件修改时间 %v，得到 %v", mtime, res.Time)
	}
}

// 文件不存在也不报错，兜底到当前时间附近
func TestExtractTimestamp_MissingFile(t *testing.T) {
	before := time.Now()
	res := ExtractTimestamp(filepath.Join(t.TempDir(), "nope.jpg"))
	after := time.Now()

	if res.Source != TimestampFileModified {
		t.Errorf("来源应为 fileModified，得到 %s", res.Source)
	}
	if res.Time.Before(before) || res.Time.After(after) {
		t.Errorf("兜底时间应接近当前时间，得到 %v", res.Time)
	}
}
