package router

import (
	"github.com/shockonlant/LunaTrack/internal/config"
	"github.com/shockonlant/LunaTrack/internal/estimate"
	"github.com/shockonlant/LunaTrack/internal/handler"
	"github.com/shockonlant/LunaTrack/internal/middleware"
	"github.com/shockonlant/LunaTrack/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures Gin engine and API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, st *store.Store, est *estimate.Estimator) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// ====== API ======
	api := r.Group("/api")
	api.Use(middleware.AuditMiddleware(db))

	recordHandler := handler.NewRecordHandler(st)
	api.POST("/records", recordHandler.CreateRecord)
	api.GET("/records", recordHandler.ListRecords)
	api.PUT("/records/:id", recordHandler.UpdateRecord)
	api.DELETE("/records/:id", recordHandler.DeleteRecord)
	api.POST("/records/clear", recordHandler.ClearRecords)

	estimateHandler := handler.NewEstimateHandler(est, cfg.Upload.MaxSizeMB)
	api.POST("/estimate", estimateHandler.EstimateFromPhoto)

	importExportHandler := handler.NewImportExportHandler(st)
	api.GET("/export", importExportHandler.ExportJSON)
	api.POST("/import", importExportHandler.ImportJSON)
	api.GET("/export/csv", importExportHandler.ExportCSV)
	api.GET("/export/xlsx", importExportHandler.ExportXLSX)

	backupHandler := handler.NewBackupHandler(st, cfg.Security.EncryptionKey, cfg.Backup.Dir)
	api.POST("/backups", backupHandler.CreateBackup)
	api.GET("/backups", backupHandler.ListBackups)
	api.GET("/backups/:name/download", backupHandler.DownloadBackup)
	api.POST("/backups/:name/restore", backupHandler.RestoreBackup)
	api.DELETE("/backups/:name", backupHandler.DeleteBackup)

	logHandler := handler.NewLogHandler(db)
	api.GET("/logs", logHandler.ListLogs)

	return r
}
