package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/SustainWise/CC/internal/config"
	"github.com/SustainWise/CC/internal/database"
	"github.com/SustainWise/CC/internal/media"
	"github.com/SustainWise/CC/internal/router"

	"github.com/joho/godotenv"
)

func main() {
	// .env 先于 viper 的环境变量覆盖加载
	_ = godotenv.Load()

	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// photo storage
	photos, err := media.NewDiskStore(cfg.Media.Dir)
	if err != nil {
		log.Fatalf("init media store: %v", err)
	}

	// setup router
	r := router.SetupRouter(cfg, db, photos)

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
