package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/shockonlant/LunaTrack/internal/config"
	"github.com/shockonlant/LunaTrack/internal/database"
	"github.com/shockonlant/LunaTrack/internal/models"
	"github.com/shockonlant/LunaTrack/internal/storage"
	"github.com/shockonlant/LunaTrack/internal/util"
)

// setupTestDB 初始化临时的 sqlite 测试数据库
func setupTestDB(t *testing.T) *storage.GormStore {
	t.Helper()

	cfg := config.DatabaseConfig{
		Path:    filepath.Join(t.TempDir(), "test_lunatrack.db"),
		LogMode: false,
	}

	db, err := database.Init(cfg)
	if err != nil {
		t.Fatalf("Init test database failed: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return storage.NewGormStore(db)
}

// TestIntegration_SqliteDocumentFlow 集成测试：sqlite 文档表上的完整记录流程
func TestIntegration_SqliteDocumentFlow(t *testing.T) {
	// 1. sqlite 文档存储上建 Store
	s := New(setupTestDB(t))

	// 2. 写入两条记录
	r1, err := s.Create(time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC), 20, "第一条", models.SourceManual)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(time.Date(2025, 2, 2, 8, 0, 0, 0, time.UTC), 30, "第二条", models.SourceAI); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 3. 列表应为倒序
	list, err := s.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(list) != 2 || list[1].ID != r1.ID {
		t.Fatalf("列表顺序不对: %+v", list)
	}

	// 4. 更新后再读，修改应已落库
	amount := 25
	if _, err := s.Update(r1.ID, Patch{Amount: &amount}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	list, _ = s.ListAll()
	for _, rec := range list {
		if rec.ID == r1.ID && rec.Amount != 25 {
			t.Errorf("更新没有落库: %+v", rec)
		}
	}

	// 5. 删除一条
	if err := s.Delete(r1.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, _ = s.ListAll()
	if len(list) != 1 {
		t.Fatalf("删除后应剩 1 条，得到 %d", len(list))
	}
}

// TestIntegration_EncryptedBackupRoundTrip 集成测试：导出 → 加密 → 解密 → 合并导入
func TestIntegration_EncryptedBackupRoundTrip(t *testing.T) {
	// 1. 源库在 sqlite 文档表上
	src := New(setupTestDB(t))
	if _, err := src.Create(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), 15, "备份我", models.SourceManual); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 2. 导出并加密（备份文件的内容就是这个）
	doc, err := src.ExportSnapshot()
	if err != nil {
		t.Fatalf("ExportSnapshot: %v", err)
	}
	raw, _ := json.Marshal(doc)

	key := "integration-test-key"
	enc, err := util.EncryptAES(key, raw)
	if err != nil {
		t.Fatalf("EncryptAES: %v", err)
	}

	// 3. 解密后合并进一个文件存储上的空库
	dec, err := util.DecryptAES(key, enc)
	if err != nil {
		t.Fatalf("DecryptAES: %v", err)
	}

	fs, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	dst := New(fs)

	added, err := dst.ImportMerge(dec)
	if err != nil {
		t.Fatalf("ImportMerge: %v", err)
	}
	if added != 1 {
		t.Errorf("应导入 1 条，得到 %d", added)
	}

	// 4. 两边的记录应完全一致
	srcList, _ := src.ListAll()
	dstList, _ := dst.ListAll()
	if len(dstList) != 1 || dstList[0].ID != srcList[0].ID || dstList[0].Memo != "备份我" {
		t.Errorf("恢复出的记录不一致: %+v", dstList)
	}
}
