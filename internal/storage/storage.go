package storage

import "errors"

// ErrNotFound 表示指定 key 下还没有文档。
var ErrNotFound = errors.New("document not found")

// DocumentStore 是单 key 文档存储的抽象：一次 Get/Set/Remove 操作一整份文档，
// 不提供跨 key 的事务。Set 必须整体成功或整体失败，不能留下半份文档。
type DocumentStore interface {
	// Get 返回 key 对应的文档，不存在时返回 ErrNotFound。
	Get(key string) ([]byte, error)
	// Set 原子地写入整份文档。
	Set(key string, doc []byte) error
	// Remove 删除文档，key 不存在时视为成功。
	Remove(key string) error
}
