package estimate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shockonlant/LunaTrack/internal/config"

	"github.com/ollama/ollama/api"
)

// OllamaRuntime 用本机的 Ollama 服务实现 Runtime。
// 模型在本地跑，图片不出设备。
type OllamaRuntime struct {
	client *api.Client
	model  string
}

func NewOllamaRuntime(cfg config.EstimateConfig) (*OllamaRuntime, error) {
	host := cfg.Host
	if host == "" {
		host = "http://127.0.0.1:11434"
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &OllamaRuntime{
		client: api.NewClient(base, &http.Client{Timeout: timeout}),
		model:  cfg.Model,
	}, nil
}

// Availability 先探活再查模型列表：服务没起来就是 unavailable，
// 服务在但模型还没拉下来算 downloadable（按可用处理，推理失败再报）。
func (o *OllamaRuntime) Availability(ctx context.Context) (Availability, error) {
	if err := o.client.Heartbeat(ctx); err != nil {
		return AvailabilityUnavailable, nil
	}

	list, err := o.client.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list models: %w", err)
	}
	for _, m := range list.Models {
		if m.Name == o.model || strings.HasPrefix(m.Name, o.model+":") {
			return AvailabilityAvailable, nil
		}
	}
	return AvailabilityDownloadable, nil
}

// Generate 发一次非流式推理请求，低温度配置让输出尽量稳定。
func (o *OllamaRuntime) Generate(ctx context.Context, prompt string, image []byte) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
		Images: []api.ImageData{api.ImageData(image)},
		Options: map[string]interface{}{
			"temperature": 0.1,
			"top_k":       10,
			"num_predict": 8,
		},
	}

	var sb strings.Builder
	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return sb.String(), nil
}
