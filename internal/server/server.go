package server

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veridata/mdm/internal/config"
	"github.com/veridata/mdm/internal/core"
	"github.com/veridata/mdm/internal/store"
)

type Server struct {
	Store *store.SQLiteStore
	MDM   *core.Service
	Cfg   *config.Config
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}

	// Env overrides for containerized deployments.
	if envPath := os.Getenv("MDM_DB_PATH"); envPath != "" {
		cfg.Database.Path = envPath
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	srv := &Server{
		Store: st,
		MDM:   core.NewService(st, cfg),
		Cfg:   cfg,
	}

	if cfg.Audit.RetentionDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -cfg.Audit.RetentionDays)
		if n, err := st.PurgeAuditBefore(context.Background(), cutoff); err != nil {
			log.Printf("Warning: audit retention purge failed: %v", err)
		} else if n > 0 {
			log.Printf("Purged %d audit entries older than %d days", n, cfg.Audit.RetentionDays)
		}
	}

	return srv
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/api/health", s.Health)
	r.GET("/api/metrics", s.Metrics)

	r.GET("/api/duplicates", s.ListDuplicates)
	r.GET("/api/duplicates/counts", s.DuplicateCounts)
	r.POST("/api/merge", s.Merge)

	r.GET("/api/records/:collection", s.ListRecords)
	r.POST("/api/records/:collection", s.CreateRecord)
	r.GET("/api/records/:collection/:id", s.GetRecord)
	r.PUT("/api/records/:collection/:id", s.UpdateRecord)
	r.DELETE("/api/records/:collection/:id", s.DeleteRecord)

	r.GET("/api/audit", s.AuditHistory)

	return r
}
