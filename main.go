package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/unbirthdayhatter/socialmorpho/api/rest"
	"github.com/unbirthdayhatter/socialmorpho/api/sse"
	"github.com/unbirthdayhatter/socialmorpho/audit"
	"github.com/unbirthdayhatter/socialmorpho/broadcast"
	"github.com/unbirthdayhatter/socialmorpho/cache"
	"github.com/unbirthdayhatter/socialmorpho/config"
	dbadapter "github.com/unbirthdayhatter/socialmorpho/db"
	"github.com/unbirthdayhatter/socialmorpho/game/event"
	"github.com/unbirthdayhatter/socialmorpho/game/quest"
	mw "github.com/unbirthdayhatter/socialmorpho/middleware"
	"github.com/unbirthdayhatter/socialmorpho/model"
	"github.com/unbirthdayhatter/socialmorpho/plugin/hook"
	"github.com/unbirthdayhatter/socialmorpho/resource"
	"github.com/unbirthdayhatter/socialmorpho/scheduler"
	"github.com/unbirthdayhatter/socialmorpho/store"
	titlesync "github.com/unbirthdayhatter/socialmorpho/sync"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Security.PairKeyHash == "" {
		logger.Warn("security.pair_key_hash is not set; pairing is disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Store / Audit ----
	st := store.New(db, logger)
	defer st.Stop()
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop()

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Data files ----
	bundle := resource.Load(cfg.Data, logger)

	// ---- Persisted state ----
	quests, err := st.LoadQuests()
	if err != nil {
		log.Fatalf("load quests: %v", err)
	}
	stats, err := st.LoadStats()
	if err != nil {
		log.Fatalf("load stats: %v", err)
	}
	rotState, err := st.LoadRotation()
	if err != nil {
		log.Fatalf("load rotation: %v", err)
	}
	logger.Info("state loaded", zap.Int("quests", len(quests)))

	// ---- Hooks / Broadcast / Engine ----
	hooks := hook.NewCenter()
	hub := broadcast.New(c, pubsub, cfg.Engine.FeedSize, logger)

	engine := quest.NewEngine(quest.Options{
		Quests:      quests,
		Stats:       stats,
		Rotation:    rotState,
		Templates:   bundle.Templates,
		BaseTiers:   bundle.BaseTiers,
		SecretTiers: bundle.SecretTiers,
		Gate: event.GateConfig{
			DuplicateWindow: cfg.Engine.DuplicateWindow,
			DefaultCooldown: cfg.Engine.DefaultCooldown,
			Cooldowns:       cfg.Engine.Cooldowns,
		},
		Preset:    cfg.Rotation.Preset,
		Store:     st,
		Audit:     auditSvc,
		Broadcast: hub,
		Hooks:     hooks,
		Logger:    logger,
	})
	engine.CheckAndResetQuests()
	engine.EnsureDailyQuests(time.Now())

	// ---- Title sync ----
	syncSvc := titlesync.New(cfg.Sync, logger)
	if cfg.Sync.Enabled {
		syncSvc.RegisterHooks(hooks)
	}

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("quest_resets", time.Minute, func() {
		engine.CheckAndResetQuests()
		engine.EnsureDailyQuests(time.Now())
	})
	sched.AddDailyAt("daily_rollover", cfg.Rotation.RolloverHour, func() {
		engine.CheckAndResetQuests()
		engine.EnsureDailyQuests(time.Now())
	})
	sched.AddTicker("stats_snapshot", 5*time.Minute, func() {
		st.SaveStats(engine.Stats())
	})
	if cfg.Sync.Enabled && cfg.Sync.Interval > 0 {
		sched.AddTicker("title_sync", cfg.Sync.Interval, func() {
			syncSvc.Tick(engine.Stats().UnlockedTitle)
		})
	}

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(c, cfg.Security)
	questH := apirest.NewQuestHandler(engine, logger)
	progH := apirest.NewProgressHandler(engine, hub, logger)
	sseH := sse.NewHandler(pubsub, c, cfg.Security, logger)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/pair", authH.Pair)
		authG.POST("/unpair", mw.Auth(cfg.Security, c), authH.Unpair)

		authed := api.Group("")
		authed.Use(mw.Auth(cfg.Security, c))

		authed.GET("/quests", questH.List)
		authed.GET("/quests/active", questH.Active)
		authed.POST("/quests", questH.Create)
		authed.DELETE("/quests/:id", questH.Delete)
		authed.POST("/daily/reroll", questH.Reroll)
		authed.GET("/packs/export", questH.ExportPack)
		authed.POST("/packs/import", questH.ImportPack)

		authed.POST("/lines", progH.IngestLines)
		authed.POST("/events", progH.IngestEvent)
		authed.GET("/stats", progH.Stats)
		authed.GET("/stats/title", progH.TitleProgress)
		authed.GET("/stats/secret-titles", progH.SecretTitles)
		authed.GET("/stats/top-events", progH.TopEvents)
		authed.GET("/feed", progH.Feed)

		// Manual title sync pull for the settings panel.
		authed.POST("/sync/pull", func(ctx *gin.Context) {
			title, err := syncSvc.PullTitle(ctx.Request.Context())
			if err != nil {
				ctx.JSON(503, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(200, gin.H{"title": title})
		})
	}

	r.GET("/sse", sseH.ServeSSE)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
