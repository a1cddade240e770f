package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shockonlant/LunaTrack/internal/models"
	"github.com/shockonlant/LunaTrack/internal/storage"

	"github.com/google/uuid"
)

// DocumentKey 是记录文档在底层存储里占用的 key。
const DocumentKey = "records"

// Store 管理全部流量记录，是记录列表唯一的拥有者。
// 每个操作都重新读整份文档、改完整体写回，不在内存里留缓存，
// 所以排序只取决于当前文档内容。进程内用互斥锁串行化读改写，
// 跨进程的并发写入不在支持范围内。
type Store struct {
	mu   sync.Mutex
	docs storage.DocumentStore

	// 可注入的时钟和 id 生成器，测试里换成确定性的实现
	now   func() time.Time
	newID func() string
}

func New(docs storage.DocumentStore) *Store {
	return &Store{
		docs:  docs,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Patch 是 Update 的部分字段集合，nil 表示不修改该字段。
// id 和 createdAt 不可变，因此这里根本不提供。
type Patch struct {
	Datetime *time.Time
	Amount   *int
	Memo     *string
	Source   *models.Source
}

// ---------- 文档读写 ----------

func (s *Store) load() (*models.RecordDocument, error) {
	raw, err := s.docs.Get(DocumentKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &models.RecordDocument{}, nil
		}
		return nil, &PersistenceError{Op: "read", Err: err}
	}

	var doc models.RecordDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &PersistenceError{Op: "decode", Err: err}
	}
	return &doc, nil
}

func (s *Store) save(doc *models.RecordDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}
	if err := s.docs.Set(DocumentKey, raw); err != nil {
		return &PersistenceError{Op: "write", Err: err}
	}
	return nil
}

// ---------- 校验 ----------

func validateAmount(amount int) error {
	if amount < models.AmountMin || amount > models.AmountMax {
		return &ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", models.AmountMin, models.AmountMax, amount),
		}
	}
	return nil
}

func validateDatetime(t time.Time) error {
	if t.IsZero() {
		return &ValidationError{Field: "datetime", Reason: "must be a valid instant"}
	}
	return nil
}

func validateSource(src models.Source) error {
	if !src.Valid() {
		return &ValidationError{Field: "source", Reason: fmt.Sprintf("unknown source %q", src)}
	}
	return nil
}

// ---------- 操作 ----------

// ListAll 返回全部记录，按 createdAt 倒序（最新在前），
// createdAt 相同时保持追加顺序。磁盘上的文档是追加序，所以每次读都重新排。
func (s *Store) ListAll() ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make([]models.Record, len(doc.Records))
	copy(out, doc.Records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Create 校验并追加一条新记录，磁盘上的已有数据不重排。
func (s *Store) Create(datetime time.Time, amount int, memo string, source models.Source) (*models.Record, error) {
	if err := validateDatetime(datetime); err != nil {
		return nil, err
	}
	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	if err := validateSource(source); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec := models.Record{
		ID:        s.newID(),
		Datetime:  datetime.UTC(),
		Amount:    amount,
		Memo:      memo,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc.Records = append(doc.Records, rec)
	if err := s.save(doc); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update 按 Patch 合并给到的字段，updatedAt 无条件刷新。
func (s *Store) Update(id string, patch Patch) (*models.Record, error) {
	if patch.Amount != nil {
		if err := validateAmount(*patch.Amount); err != nil {
			return nil, err
		}
	}
	if patch.Datetime != nil {
		if err := validateDatetime(*patch.Datetime); err != nil {
			return nil, err
		}
	}
	if patch.Source != nil {
		if err := validateSource(*patch.Source); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range doc.Records {
		if doc.Records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &NotFoundError{ID: id}
	}

	rec := &doc.Records[idx]
	if patch.Datetime != nil {
		rec.Datetime = patch.Datetime.UTC()
	}
	if patch.Amount != nil {
		rec.Amount = *patch.Amount
	}
	if patch.Memo != nil {
		rec.Memo = *patch.Memo
	}
	if patch.Source != nil {
		rec.Source = *patch.Source
	}
	rec.UpdatedAt = s.now()

	if err := s.save(doc); err != nil {
		return nil, err
	}
	out := *rec
	return &out, nil
}

// Delete 删除指定 id 的一条记录。
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	idx := -1
	for i := range doc.Records {
		if doc.Records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotFoundError{ID: id}
	}

	doc.Records = append(doc.Records[:idx], doc.Records[idx+1:]...)
	return s.save(doc)
}

// ClearAll 无条件清空全部记录，空库上调用也算成功。
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(&models.RecordDocument{})
}

// ExportSnapshot 生成包含全部记录的导出文档，记录原样带出。
func (s *Store) ExportSnapshot() (*models.ExportDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	records := make([]models.Record, len(doc.Records))
	copy(records, doc.Records)

	return &models.ExportDocument{
		ExportTimestamp: s.now(),
		FormatVersion:   models.ExportFormatVersion,
		Records:         records,
	}, nil
}

// importDocument 用指针区分 "records 字段缺失" 和 "records 为空数组"。
type importDocument struct {
	ExportTimestamp time.Time        `json:"exportTimestamp"`
	FormatVersion   string           `json:"formatVersion"`
	Records         *[]models.Record `json:"records"`
}

// parseImportDocument 解析并校验一份导出文档，返回其中的记录。
// 有一条记录形状不合格就整体拒绝，不做部分解析。
func parseImportDocument(data []byte) ([]models.Record, error) {
	var doc importDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ImportFormatError{Reason: err.Error()}
	}
	if doc.Records == nil {
		return nil, &ImportFormatError{Reason: "missing records field"}
	}
	for i, rec := range *doc.Records {
		if err := validateImported(rec); err != nil {
			return nil, &ImportFormatError{Reason: fmt.Sprintf("record #%d: %v", i, err)}
		}
	}
	return *doc.Records, nil
}

// ImportMerge 解析导出文档并按 id 去重合并：id 已存在的记录跳过（保留现有记录），
// 新 id 原样追加（保留原 id、时间戳和来源），返回新增条数。
// 文档格式不对时整次导入失败，不做部分合并；对同一份文档重放是幂等的。
func (s *Store) ImportMerge(data []byte) (int, error) {
	incoming, err := parseImportDocument(data)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(current.Records))
	for _, rec := range current.Records {
		seen[rec.ID] = true
	}

	added := 0
	for _, rec := range incoming {
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		current.Records = append(current.Records, rec)
		added++
	}

	if added > 0 {
		if err := s.save(current); err != nil {
			return 0, err
		}
	}
	return added, nil
}

// ReplaceAll 用导出文档整体替换现有记录，返回替换后的条数。
// 解析和校验全部通过后才做一次整写，中途失败时现有记录保持原样，
// 不会出现"已清空但还没导入"的中间状态。恢复备份走这里。
func (s *Store) ReplaceAll(data []byte) (int, error) {
	incoming, err := parseImportDocument(data)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(&models.RecordDocument{Records: incoming}); err != nil {
		return 0, err
	}
	return len(incoming), nil
}

func validateImported(rec models.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("empty id")
	}
	if rec.Datetime.IsZero() {
		return fmt.Errorf("missing datetime")
	}
	if rec.Amount < models.AmountMin || rec.Amount > models.AmountMax {
		return fmt.Errorf("amount %d out of range", rec.Amount)
	}
	if len(rec.Memo) > models.MemoMaxBytes {
		return fmt.Errorf("memo exceeds %d bytes", models.MemoMaxBytes)
	}
	if !rec.Source.Valid() {
		return fmt.Errorf("unknown source %q", rec.Source)
	}
	if rec.CreatedAt.IsZero() {
		return fmt.Errorf("missing createdAt")
	}
	return nil
}
