package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/shockonlant/LunaTrack/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditMiddleware 把改动数据的请求记到审计日志表里，只记状态变更，GET 不记。
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		// 读取请求体
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		// 执行请求
		c.Next()

		// 构造 action
		path := c.Request.URL.Path
		action := c.Request.Method + " " + path

		// 文件上传的请求体是二进制，不往日志里塞
		contentType := c.ContentType()
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 && contentType == "application/json" {
			action += " " + string(bodyBytes)
		}

		log := models.AuditLog{
			Path:      path,
			Method:    c.Request.Method,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&log).Error
	}
}
