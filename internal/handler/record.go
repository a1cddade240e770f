package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shockonlant/LunaTrack/internal/models"
	"github.com/shockonlant/LunaTrack/internal/store"
	"github.com/shockonlant/LunaTrack/internal/util"

	"github.com/gin-gonic/gin"
)

// RecordHandler 负责流量记录相关接口
type RecordHandler struct {
	Store *store.Store
}

func NewRecordHandler(s *store.Store) *RecordHandler {
	return &RecordHandler{Store: s}
}

// ---------- 请求结构 ----------

// amount 用指针：binding required 对 0 值会误判，而 0 是合法的量
type createRecordReq struct {
	Datetime string   `json:"datetime" binding:"required"`
	Amount   *float64 `json:"amount" binding:"required"`
	Memo     string   `json:"memo"`
	Source   string   `json:"source"`
}

type updateRecordReq struct {
	Datetime *string  `json:"datetime"`
	Amount   *float64 `json:"amount"`
	Memo     *string  `json:"memo"`
	Source   *string  `json:"source"`
}

// respondStoreError 把 store 的错误类型翻译成统一的 HTTP 返回
func respondStoreError(c *gin.Context, err error) {
	var (
		ve *store.ValidationError
		nf *store.NotFoundError
		fe *store.ImportFormatError
		pe *store.PersistenceError
	)
	switch {
	case errors.As(err, &ve):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误: "+ve.Error())
	case errors.As(err, &nf):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "记录不存在")
	case errors.As(err, &fe):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "导入文件格式不正确: "+fe.Reason)
	case errors.As(err, &pe):
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "数据保存失败，请重试")
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "服务器错误")
	}
}

// ---------- 记一笔 ----------

func (h *RecordHandler) CreateRecord(c *gin.Context) {
	var req createRecordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	datetime, err := util.ParseDatetime(req.Datetime)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "时间格式不正确")
		return
	}

	// 量必须是 0~50 的整数，3.5 这类小数在这里挡掉
	amount, err := util.ValidateAmount(*req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请输入 0~50 的整数量")
		return
	}

	if err := util.ValidateMemo(req.Memo); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "备注过长")
		return
	}

	source := models.Source(strings.TrimSpace(req.Source))
	if source == "" {
		source = models.SourceManual
	}
	if !source.Valid() {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "来源只能是 manual 或 ai")
		return
	}

	rec, err := h.Store.Create(datetime, amount, req.Memo, source)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	util.Success(c, util.Response{
		"record": rec,
	})
}

// ---------- 历史列表 ----------

// ListRecords 返回全部记录，按创建时间倒序（最新在前）
func (h *RecordHandler) ListRecords(c *gin.Context) {
	records, err := h.Store.ListAll()
	if err != nil {
		respondStoreError(c, err)
		return
	}

	util.Success(c, util.Response{
		"items": records,
		"total": len(records),
	})
}

// ---------- 修改 ----------

func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 不合法")
		return
	}

	var req updateRecordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	var patch store.Patch

	if req.Datetime != nil {
		t, err := util.ParseDatetime(*req.Datetime)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "时间格式不正确")
			return
		}
		patch.Datetime = &t
	}
	if req.Amount != nil {
		amount, err := util.ValidateAmount(*req.Amount)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请输入 0~50 的整数量")
			return
		}
		patch.Amount = &amount
	}
	if req.Memo != nil {
		if err := util.ValidateMemo(*req.Memo); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "备注过长")
			return
		}
		patch.Memo = req.Memo
	}
	if req.Source != nil {
		source := models.Source(*req.Source)
		if !source.Valid() {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "来源只能是 manual 或 ai")
			return
		}
		patch.Source = &source
	}

	rec, err := h.Store.Update(id, patch)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	util.Success(c, util.Response{
		"record": rec,
	})
}

// ---------- 删除 ----------

func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 不合法")
		return
	}

	if err := h.Store.Delete(id); err != nil {
		respondStoreError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "删除成功",
	})
}

// ClearRecords 清空全部记录，清空前请先导出
func (h *RecordHandler) ClearRecords(c *gin.Context) {
	if err := h.Store.ClearAll(); err != nil {
		respondStoreError(c, err)
		return
	}

	util.Success(c, util.Response{
		"message": "已清空全部记录",
	})
}
