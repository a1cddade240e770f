package estimate

import (
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// TimestampSource 标记时间是从哪里取到的。
type TimestampSource string

const (
	TimestampEXIF         TimestampSource = "exif"
	TimestampFileModified TimestampSource = "fileModified"
)

// TimestampResult 是照片时间提取的结果，一定有值。
type TimestampResult struct {
	Time   time.Time
	Source TimestampSource
}

// EXIF 时间格式固定为 "2024:12:25 14:30:45"
const exifTimeLayout = "2006:01:02 15:04:05"

// ExtractTimestamp 从照片提取拍摄时间：优先读 EXIF 的 DateTimeOriginal，
// 标签缺失、格式不对或解码出错时静默退回文件修改时间。
// 文件总有修改时间，所以这一步对调用方没有失败分支。
func ExtractTimestamp(path string) TimestampResult {
	if t, ok := exifCaptureTime(path); ok {
		return TimestampResult{Time: t, Source: TimestampEXIF}
	}
	return TimestampResult{Time: fileModTime(path), Source: TimestampFileModified}
}

func exifCaptureTime(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false
	}
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, false
	}
	s, err := tag.StringVal()
	if err != nil {
		return time.Time{}, false
	}
	return parseExifDatetime(s)
}

// parseExifDatetime 按本地时区解析 EXIF 时间字符串。
func parseExifDatetime(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(exifTimeLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func fileModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		// 文件都不在了，只能用当前时间兜底
		return time.Now()
	}
	return info.ModTime()
}
