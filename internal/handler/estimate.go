package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/shockonlant/LunaTrack/internal/estimate"
	"github.com/shockonlant/LunaTrack/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EstimateHandler 负责拍照估算接口：时间提取 + 量估算。
// 两步互相独立：时间一定有，量可能估不出来。
type EstimateHandler struct {
	Estimator      *estimate.Estimator
	MaxUploadBytes int64
}

func NewEstimateHandler(est *estimate.Estimator, maxUploadMB int) *EstimateHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &EstimateHandler{
		Estimator:      est,
		MaxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// EstimateFromPhoto 接收一张照片，返回可编辑的草稿：
// EXIF（或文件修改时间）得到的时间 + 端侧模型的量估算结果。
// 估算失败不是这个接口的错误，前端把量留空让用户手填即可。
func (h *EstimateHandler) EstimateFromPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "请上传照片")
		return
	}
	if file.Size > h.MaxUploadBytes {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "照片文件过大")
		return
	}

	// 先落到临时文件：EXIF 解码按文件读，mtime 兜底也来自这个文件
	tmpPath := filepath.Join(os.TempDir(), "lunatrack-"+uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "保存上传文件失败")
		return
	}
	defer os.Remove(tmpPath)

	ts := estimate.ExtractTimestamp(tmpPath)

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "读取上传文件失败")
		return
	}
	result := h.Estimator.EstimateVolume(c.Request.Context(), data)

	util.Success(c, util.Response{
		"draft": gin.H{
			"datetime":       ts.Time,
			"datetimeSource": ts.Source,
			"estimate":       result,
		},
	})
}
