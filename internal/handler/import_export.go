package handler

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shockonlant/LunaTrack/internal/store"
	"github.com/shockonlant/LunaTrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type ImportExportHandler struct {
	Store *store.Store
}

func NewImportExportHandler(s *store.Store) *ImportExportHandler {
	return &ImportExportHandler{Store: s}
}

// 导入文件大小上限，导出文档都很小，超过就不是正常文件
const maxImportBytes = 10 << 20

// ExportJSON 导出全部记录为 JSON 文档（可再导入合并）
func (h *ImportExportHandler) ExportJSON(c *gin.Context) {
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

	fileName := fmt.Sprintf("records_%s.json", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// ImportJSON 合并导入一份导出文档：撞 id 的跳过（保留本地），新 id 追加。
// 支持 multipart 的 file 字段或直接 POST JSON 正文。
func (h *ImportExportHandler) ImportJSON(c *gin.Context) {
	var raw []byte

	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "读取上传文件失败")
			return
		}
		defer f.Close()
		raw, err = io.ReadAll(io.LimitReader(f, maxImportBytes))
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "读取上传文件失败")
			return
		}
	} else {
		var err error
		raw, err = io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
		if err != nil || len(raw) == 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请上传导出的 JSON 文件")
			return
		}
	}

	added, err := h.Store.ImportMerge(raw)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	util.Success(c, util.Response{
		"added":   added,
		"message": fmt.Sprintf("导入完成，新增 %d 条记录", added),
	})
}

// ExportCSV 导出记录为 CSV
func (h *ImportExportHandler) ExportCSV(c *gin.Context) {
	records, err := h.Store.ListAll()
	if err != nil {
		respondStoreError(c, err)
		return
	}

	// 设置响应头
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"records_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM（让 Excel 正确识别中文）
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// 写入表头
	writer.Write([]string{"时间", "量(ml)", "来源", "备注", "创建时间"})

	for _, r := range records {
		sourceText := "手动"
		if r.Source == "ai" {
			sourceText = "AI估算"
		}

		writer.Write([]string{
			r.Datetime.Local().Format("2006-01-02 15:04:05"),
			strconv.Itoa(r.Amount),
			sourceText,
			r.Memo,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
}

// ExportXLSX 导出记录为 XLSX
func (h *ImportExportHandler) ExportXLSX(c *gin.Context) {
	records, err := h.Store.ListAll()
	if err != nil {
		respondStoreError(c, err)
		return
	}

	f := excelize.NewFile()
	sheetName := "记录明细"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "创建工作表失败")
		return
	}
	f.SetActiveSheet(index)

	// 设置表头
	headers := []string{"时间", "量(ml)", "来源", "备注", "创建时间"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, h)
	}

	// 写入数据
	for idx, r := range records {
		row := idx + 2

		sourceText := "手动"
		if r.Source == "ai" {
			sourceText = "AI估算"
		}

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.Datetime.Local().Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), sourceText)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Memo)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "D", 30)
	f.SetColWidth(sheetName, "E", "E", 20)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"records_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "导出失败")
	}
}
