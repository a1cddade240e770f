package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shockonlant/LunaTrack/internal/store"
	"github.com/shockonlant/LunaTrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BackupHandler 负责备份相关接口：把导出文档加密后存到备份目录。
type BackupHandler struct {
	Store      *store.Store
	EncryptKey string
	BackupDir  string
}

func NewBackupHandler(s *store.Store, encryptKey, backupDir string) *BackupHandler {
	return &BackupHandler{
		Store:      s,
		EncryptKey: encryptKey,
		BackupDir:  backupDir,
	}
}

// backupPath 校验备份文件名并拼出完整路径，挡掉路径穿越
func (h *BackupHandler) backupPath(name string) (string, bool) {
	if !strings.HasPrefix(name, "backup-") || !strings.HasSuffix(name, ".bin") {
		return "", false
	}
	if strings.ContainsAny(name, `/\`) {
		return "", false
	}
	return filepath.Join(h.BackupDir, name), true
}

// CreateBackup 生成一份加密备份文件
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	doc, err := h.Store.ExportSnapshot()
	if err != nil {
		respondStoreError(c, err)
		return
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "序列化失败")
		return
	}

	enc, err := util.EncryptAES(h.EncryptKey, raw)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "加密失败")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "创建备份目录失败")
		return
	}

	fileName := fmt.Sprintf("backup-%s.bin", uuid.New().String())
	filePath := filepath.Join(h.BackupDir, fileName)

	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "写入备份文件失败")
		return
	}

	info, _ := os.Stat(filePath)

	util.Success(c, util.Response{
		"backup": gin.H{
			"file_name":  fileName,
			"size":       info.Size(),
			"records":    len(doc.Records),
			"created_at": info.ModTime(),
		},
	})
}

// ListBackups 列出备份目录下的全部备份，按时间倒序
func (h *BackupHandler) ListBackups(c *gin.Context) {
	entries, err := os.ReadDir(h.BackupDir)
	if err != nil {
		if os.IsNotExist(err) {
			util.Success(c, util.Response{"items": []gin.H{}})
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "读取备份目录失败")
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if _, ok := h.backupPath(name); !ok || e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, gin.H{
			"file_name":  name,
			"size":       info.Size(),
			"created_at": info.ModTime(),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i]["created_at"].(time.Time).After(items[j]["created_at"].(time.Time))
	})

	util.Success(c, util.Response{
		"items": items,
	})
}

// DownloadBackup 下载指定备份文件
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	name := c.Param("name")
	path, ok := h.backupPath(name)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "备份文件名不合法")
		return
	}
	if _, err := os.Stat(path); err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "备份不存在")
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	c.File(path)
}

// DeleteBackup 删除指定备份文件
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	name := c.Param("name")
	path, ok := h.backupPath(name)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "备份文件名不合法")
		return
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "备份不存在")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "删除备份失败")
		}
		return
	}

	util.Success(c, util.Response{
		"message": "删除成功",
	})
}

// RestoreBackup 从指定备份恢复：用备份里的记录整体替换现有数据
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	name := c.Param("name")
	path, ok := h.backupPath(name)
	if !ok {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "备份文件名不合法")
		return
	}

	encData, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "备份不存在")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "读取备份文件失败")
		}
		return
	}

	raw, err := util.DecryptAES(h.EncryptKey, encData)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "解密备份文件失败")
		return
	}

	// 整体替换，校验通过才会动现有数据，恢复出来的就是备份时的完整内容
	count, err := h.Store.ReplaceAll(raw)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message":       "恢复成功",
		"records_count": count,
	})
}
