package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/shockonlant/LunaTrack/internal/config"
	"github.com/shockonlant/LunaTrack/internal/database"
	"github.com/shockonlant/LunaTrack/internal/estimate"
	"github.com/shockonlant/LunaTrack/internal/router"
	"github.com/shockonlant/LunaTrack/internal/storage"
	"github.com/shockonlant/LunaTrack/internal/store"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}
	if err := ensureDir(filepath.Dir(cfg.Log.File)); err != nil {
		log.Fatalf("create log dir: %v", err)
	}
	if err := ensureDir(cfg.Backup.Dir); err != nil {
		log.Fatalf("create backup dir: %v", err)
	}

	// init database (audit log + sqlite document table)
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// 记录文档存储：默认放 sqlite，配置成 file 就落 JSON 文件
	var docs storage.DocumentStore
	switch cfg.Storage.Kind {
	case "", "sqlite":
		docs = storage.NewGormStore(db)
	case "file":
		fs, err := storage.NewFileStore(cfg.Storage.Path)
		if err != nil {
			log.Fatalf("init file storage: %v", err)
		}
		docs = fs
	default:
		log.Fatalf("unknown storage kind %q", cfg.Storage.Kind)
	}

	recordStore := store.New(docs)

	// 端侧推理运行时（Ollama）；起不来也能跑，估算接口会按不可用降级
	runtime, err := estimate.NewOllamaRuntime(cfg.Estimate)
	if err != nil {
		log.Fatalf("init ollama runtime: %v", err)
	}
	estimator := estimate.NewEstimator(runtime)

	// setup router
	r := router.SetupRouter(cfg, db, recordStore, estimator)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
