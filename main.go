package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"trial-hand/config"
	"trial-hand/llm"
	"trial-hand/models"
	"trial-hand/providers/ctgov"
	"trial-hand/services"
	"trial-hand/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	trialsProcessedCounter prometheus.Counter
	trialsSkippedCounter   prometheus.Counter
	syncErrorsCounter      prometheus.Counter
)

func init() {
	trialsProcessedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trials_processed_total",
			Help: "Total number of trials generated and written during sync runs.",
		},
	)
	trialsSkippedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trials_skipped_total",
			Help: "Total number of trials skipped by the freshness gate.",
		},
	)
	syncErrorsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trial_sync_errors_total",
			Help: "Total number of per-trial sync errors.",
		},
	)
	prometheus.MustRegister(trialsProcessedCounter, trialsSkippedCounter, syncErrorsCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to trials database.")

	logging.Info("Running database auto-migration...")
	if err := db.AutoMigrate(&models.ClinicalTrial{}); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Setup Services
	var archive services.SnapshotArchive
	if cfg.SnapshotsEnabled {
		s3Client, err := storage.NewS3Client(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		archive = storage.NewSnapshotArchive(s3Client, cfg)
	} else {
		logging.Info("Snapshot-Archiv ist deaktiviert.")
	}

	registry := ctgov.NewFetcher(cfg, logging)
	generator := services.NewGenerator(llm.NewClient(cfg, logging), logging)
	store := storage.NewTrialStore(db, logging)
	syncer := services.NewSyncer(cfg, logging, registry, generator, store, archive)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Routes
	setupTrialRoutes(router, db, cfg, logging)
	setupSyncRoutes(router, syncer, cfg, logging)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.SyncCronSchedule, func() {
		logging.Info("Running scheduled trial sync...")
		runHeadlessSync(syncer, cfg, logging)
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort), zap.String("tenant", cfg.Tenant))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// Kein WriteTimeout: der SSE-Stream eines Sync-Laufs ist langlebig.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// runHeadlessSync führt einen Sync-Lauf ohne SSE-Konsumenten aus; die Events
// landen im Log. Wird vom Cron und vom asynchronen Trigger-Endpoint genutzt.
func runHeadlessSync(syncer *services.Syncer, cfg *config.Config, logging *zap.Logger) {
	tenant := strings.ToUpper(cfg.Tenant)
	res, err := syncer.Run(context.Background(), tenant, logEmitter(logging))
	recordSyncMetrics(res)
	if err != nil {
		logging.Error("Scheduled sync failed", zap.Error(err))
		return
	}
	logging.Info("Scheduled sync completed",
		zap.Int("processed", res.Processed),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", res.Errors))
}

// logEmitter spiegelt die Progress-Events ins Log.
func logEmitter(logging *zap.Logger) services.EmitFunc {
	return func(event any) {
		switch e := event.(type) {
		case services.ErrorEvent:
			logging.Warn("Sync-Event", zap.String("type", e.Type), zap.String("nct_id", e.NCTID), zap.String("message", e.Message))
		case services.FatalEvent:
			logging.Error("Sync-Event", zap.String("type", e.Type), zap.String("message", e.Message))
		default:
			payload, _ := json.Marshal(event)
			logging.Debug("Sync-Event", zap.ByteString("event", payload))
		}
	}
}

func recordSyncMetrics(res services.Result) {
	trialsProcessedCounter.Add(float64(res.Processed))
	trialsSkippedCounter.Add(float64(res.Skipped))
	syncErrorsCounter.Add(float64(res.Errors))
}

// setupSyncRoutes konfiguriert die Sync-Endpoints: SSE-Stream und asynchroner Trigger.
func setupSyncRoutes(router *gin.Engine, syncer *services.Syncer, cfg *config.Config, logging *zap.Logger) {
	rg := router.Group("/sync")

	// GET /sync/stream - führt den Sync aus und streamt den Fortschritt als
	// Server-Sent Events an den Aufrufer.
	rg.GET("/stream", func(c *gin.Context) {
		tenant := strings.ToUpper(cfg.Tenant)
		if _, ok := models.ProfileFor(tenant); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid tenant"})
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		emit := func(event any) {
			payload, err := json.Marshal(event)
			if err != nil {
				return
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
			c.Writer.Flush()
		}

		// Der Request-Context bricht den Lauf ab, sobald der Konsument die
		// Verbindung schließt; geprüft wird zwischen zwei Studien.
		res, err := syncer.Run(c.Request.Context(), tenant, emit)
		recordSyncMetrics(res)
		if err != nil {
			logging.Error("Sync stream ended with error", zap.Error(err))
		}
	})

	// POST /sync/run - stößt einen Lauf im Hintergrund an.
	rg.POST("/run", func(c *gin.Context) {
		tenant := strings.ToUpper(cfg.Tenant)
		if _, ok := models.ProfileFor(tenant); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid tenant"})
			return
		}

		go runHeadlessSync(syncer, cfg, logging)
		c.JSON(http.StatusAccepted, gin.H{"message": fmt.Sprintf("Sync for tenant %s triggered.", tenant)})
	})
}

// setupTrialRoutes konfiguriert die Trial-Endpoints für Abfragen und
// redaktionelle Overrides.
func setupTrialRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, logging *zap.Logger) {
	rg := router.Group("/trials")

	// Einfacher GET-Endpunkt für alle Trials des konfigurierten Tenants.
	rg.GET("/", func(c *gin.Context) {
		var trials []models.ClinicalTrial
		if err := db.Where("tenant = ?", strings.ToUpper(cfg.Tenant)).
			Order("last_synced_at desc").Find(&trials).Error; err != nil {
			logging.Error("Database query for all trials failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, trials)
	})

	// Body-gesteuerter Endpunkt für komplexe Abfragen.
	rg.POST("/query", func(c *gin.Context) {
		type TrialQuery struct {
			Tenant        string `json:"tenant"`
			NCTID         string `json:"nct_id"`
			OverallStatus string `json:"overall_status"`
			IsActive      *bool  `json:"is_active"`
			HasOverride   *bool  `json:"has_override"`
			Limit         int    `json:"limit"`
		}

		var req TrialQuery
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		query := db.Model(&models.ClinicalTrial{})

		if req.Tenant != "" {
			query = query.Where("tenant = ?", strings.ToUpper(req.Tenant))
		}
		if req.NCTID != "" {
			query = query.Where("nct_id = ?", req.NCTID)
		}
		if req.OverallStatus != "" {
			query = query.Where("overall_status = ?", req.OverallStatus)
		}
		if req.IsActive != nil {
			query = query.Where("is_active = ?", *req.IsActive)
		}
		if req.HasOverride != nil {
			overrideCond := "short_title_manual IS NOT NULL OR ai_summary_manual IS NOT NULL OR ai_purpose_manual IS NOT NULL"
			if *req.HasOverride {
				query = query.Where(overrideCond)
			} else {
				query = query.Not(overrideCond)
			}
		}
		if req.Limit > 0 {
			query = query.Limit(req.Limit)
		}

		var trials []models.ClinicalTrial
		if err := query.Order("last_synced_at desc").Find(&trials).Error; err != nil {
			logging.Error("Database query for trials failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, trials)
	})

	// GET einzelner Trial über die NCT-ID.
	rg.GET("/:nctId", func(c *gin.Context) {
		trial, ok := findTrial(c, db, cfg, logging)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, trial)
	})

	// PATCH - Manuelle Overrides der Redaktion setzen oder löschen. Ein
	// gesetzter Override schützt den generierten Zwilling vor künftigen
	// Sync-Läufen; ein leerer String löscht den Override wieder.
	rg.PATCH("/:nctId", func(c *gin.Context) {
		trial, ok := findTrial(c, db, cfg, logging)
		if !ok {
			return
		}

		var payload struct {
			ShortTitleManual      *string `json:"short_title_manual"`
			AiSummaryManual       *string `json:"ai_summary_manual"`
			AiPurposeManual       *string `json:"ai_purpose_manual"`
			AiTreatmentsManual    *string `json:"ai_treatments_manual"`
			AiDesignManual        *string `json:"ai_design_manual"`
			AiEligibilityManual   *string `json:"ai_eligibility_manual"`
			AiParticipationManual *string `json:"ai_participation_manual"`
			AiLeadershipManual    *string `json:"ai_leadership_manual"`
			AiPriorResearchManual *string `json:"ai_prior_research_manual"`
			AiLocationsManual     *string `json:"ai_locations_manual"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updates := map[string]interface{}{}
		setOverride := func(column string, value *string) {
			if value == nil {
				return
			}
			if *value == "" {
				updates[column] = nil
			} else {
				updates[column] = *value
			}
		}
		setOverride("short_title_manual", payload.ShortTitleManual)
		setOverride("ai_summary_manual", payload.AiSummaryManual)
		setOverride("ai_purpose_manual", payload.AiPurposeManual)
		setOverride("ai_treatments_manual", payload.AiTreatmentsManual)
		setOverride("ai_design_manual", payload.AiDesignManual)
		setOverride("ai_eligibility_manual", payload.AiEligibilityManual)
		setOverride("ai_participation_manual", payload.AiParticipationManual)
		setOverride("ai_leadership_manual", payload.AiLeadershipManual)
		setOverride("ai_prior_research_manual", payload.AiPriorResearchManual)
		setOverride("ai_locations_manual", payload.AiLocationsManual)

		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields provided"})
			return
		}

		if err := db.Model(&trial).Updates(updates).Error; err != nil {
			logging.Error("Failed to update trial overrides", zap.String("nct_id", trial.NCTID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update trial"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "updated fields", "updates": updates})
	})

	// PATCH - Soft-Disable/-Enable eines Trials.
	rg.PATCH("/:nctId/active", func(c *gin.Context) {
		trial, ok := findTrial(c, db, cfg, logging)
		if !ok {
			return
		}

		var payload struct {
			IsActive *bool `json:"is_active" binding:"required"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body: is_active required"})
			return
		}

		if err := db.Model(&trial).Update("is_active", *payload.IsActive).Error; err != nil {
			logging.Error("Failed to update trial active flag", zap.String("nct_id", trial.NCTID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"nct_id": trial.NCTID, "is_active": *payload.IsActive})
	})
}

// findTrial lädt den Trial aus Pfad-Parameter und Tenant (Query-Param oder
// konfigurierter Default). Schreibt bei Fehlern selbst die HTTP-Antwort.
func findTrial(c *gin.Context, db *gorm.DB, cfg *config.Config, logging *zap.Logger) (models.ClinicalTrial, bool) {
	nctID := c.Param("nctId")
	tenant := strings.ToUpper(c.DefaultQuery("tenant", cfg.Tenant))

	var trial models.ClinicalTrial
	if err := db.Where("tenant = ? AND nct_id = ?", tenant, nctID).First(&trial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trial not found"})
			return models.ClinicalTrial{}, false
		}
		logging.Error("DB error while fetching trial", zap.String("nct_id", nctID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return models.ClinicalTrial{}, false
	}
	return trial, true
}
