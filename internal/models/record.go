package models

import "time"

// Source 表示记录的量（amount）是怎么来的。
type Source string

const (
	SourceManual Source = "manual" // 用户手动输入
	SourceAI     Source = "ai"     // 端侧模型估算
)

// Valid reports whether s is a known source value.
func (s Source) Valid() bool {
	return s == SourceManual || s == SourceAI
}

// Record 表示一条经期流量记录
// 量用整数毫升存储，合法范围 0~50
type Record struct {
	ID        string    `json:"id"`
	Datetime  time.Time `json:"datetime"`
	Amount    int       `json:"amount"` // 毫升，0~50
	Memo      string    `json:"memo"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AmountMin / AmountMax 是单条记录允许的量的范围（毫升）。
const (
	AmountMin = 0
	AmountMax = 50
)

// MemoMaxBytes 是备注允许的最大长度（字节），创建、修改、导入都按这个限制。
const MemoMaxBytes = 255
