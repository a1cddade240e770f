package estimate

import (
	"context"
	"fmt"
	"strings"

	"github.com/shockonlant/LunaTrack/internal/models"
)

// Confidence 是估算结果的置信度档位。
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Result 是一次量估算的结果。估算失败不是异常而是带标记的结果，
// 调用方把 Success=false 当成"量留空，让用户手填"，不能当成硬错误。
// Volume 用指针：0 毫升是合法估算值，成功时字段必须出现在 JSON 里，
// 失败时整个字段不出现，调用方靠字段有无区分"估到 0"和"没估出来"。
type Result struct {
	Success       bool       `json:"success"`
	Volume        *int       `json:"estimatedVolume,omitempty"`
	Confidence    Confidence `json:"confidence,omitempty"`
	FailureReason string     `json:"failureReason,omitempty"`
}

// Availability 是端侧推理能力的可用状态。
// 除 unavailable 之外的状态都按可用处理。
type Availability string

const (
	AvailabilityUnavailable  Availability = "unavailable"
	AvailabilityDownloadable Availability = "downloadable"
	AvailabilityDownloading  Availability = "downloading"
	AvailabilityAvailable    Availability = "available"
)

// Runtime 是端侧推理运行时的抽象：先查可用性，再带图发一次推理请求。
type Runtime interface {
	Availability(ctx context.Context) (Availability, error)
	Generate(ctx context.Context, prompt string, image []byte) (string, error)
}

// 固定的指令模板，要求模型只回一个整数
const volumePrompt = `这张照片是一次经期流量的记录。请估算照片中可见的经血量，单位毫升。
只回答一个 0 到 50 之间的整数，不要任何其他文字。`

// Estimator 把可用性查询、单次推理、结果解析串成一条管线。
// 不做任何重试，重新估算就是再调一次，和之前的结果互不影响。
type Estimator struct {
	rt Runtime
}

func NewEstimator(rt Runtime) *Estimator {
	return &Estimator{rt: rt}
}

// EstimateVolume 对照片做一次量估算，永远返回带标记的 Result 而不是 error。
func (e *Estimator) EstimateVolume(ctx context.Context, image []byte) Result {
	avail, err := e.rt.Availability(ctx)
	if err != nil {
		return failure(fmt.Sprintf("查询模型可用性失败: %v", err))
	}
	if avail == AvailabilityUnavailable {
		// 不可用就直接放弃，不再尝试建会话
		return failure("端侧模型不可用")
	}

	out, err := e.rt.Generate(ctx, volumePrompt, image)
	if err != nil {
		return failure(fmt.Sprintf("模型推理失败: %v", err))
	}

	v, ok := parseLeadingInt(out)
	if !ok {
		return failure(fmt.Sprintf("模型输出无法解析为整数: %q", strings.TrimSpace(out)))
	}
	if v < models.AmountMin || v > models.AmountMax {
		return failure(fmt.Sprintf("估算值 %d 超出 %d~%d 范围", v, models.AmountMin, models.AmountMax))
	}

	return Result{
		Success:    true,
		Volume:     &v,
		Confidence: classifyConfidence(v),
	}
}

func failure(reason string) Result {
	return Result{Success: false, FailureReason: reason}
}

// classifyConfidence 只看估算值分档：10~40 高，<5 或 >45 低，其余中。
// 纯函数，和模型本身无关。
func classifyConfidence(v int) Confidence {
	switch {
	case v >= 10 && v <= 40:
		return ConfidenceHigh
	case v < 5 || v > 45:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// parseLeadingInt 取字符串开头的十进制整数，模型偶尔会在数字后面多话
// （比如 "42 ml"），开头的数字照样认。
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	v := 0
	for _, c := range s[:i] {
		v = v*10 + int(c-'0')
		if v > 1000 { // 防止超长数字串溢出，反正超过 50 都会被拒
			return v, true
		}
	}
	return v, true
}
