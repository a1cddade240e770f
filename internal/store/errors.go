package store

import "fmt"

// ValidationError 表示调用方传入的字段不合法（比如量超出 0~50）。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError 表示操作引用了不存在的记录 id。
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %s not found", e.ID)
}

// PersistenceError 表示底层文档存储读写失败。
// 出现该错误后内存视角不再可信，调用方应重新读取。
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ImportFormatError 表示导入文档格式不对，整次导入不会有任何部分生效。
type ImportFormatError struct {
	Reason string
}

func (e *ImportFormatError) Error() string {
	return fmt.Sprintf("bad import document: %s", e.Reason)
}
