package models

import "time"

// ExportFormatVersion 导出文档的格式版本，导入时不做强校验，仅随文档携带。
const ExportFormatVersion = "1"

// ExportDocument 是导出/导入使用的文档结构，records 里的记录原样保留。
type ExportDocument struct {
	ExportTimestamp time.Time `json:"exportTimestamp"`
	FormatVersion   string    `json:"formatVersion"`
	Records         []Record  `json:"records"`
}

// RecordDocument 是持久层里保存的整份文档（单 key 存整个列表）。
// 列表按追加顺序存放，读取时再按 createdAt 排序。
type RecordDocument struct {
	Records []Record `json:"records"`
}
