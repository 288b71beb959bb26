package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/Adnan-Sarkar/course-review-backend/internal/config"
	"github.com/Adnan-Sarkar/course-review-backend/internal/handlers"
	"github.com/Adnan-Sarkar/course-review-backend/internal/metrics"
	"github.com/Adnan-Sarkar/course-review-backend/internal/middlewares"
	"github.com/Adnan-Sarkar/course-review-backend/internal/services"
	"github.com/Adnan-Sarkar/course-review-backend/internal/storage"
)

// main 为服务入口：加载配置、初始化日志/存储/服务、注册路由并启动 HTTP 服务。
func main() {
	// 配置结构化日志格式
	log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	// 加载配置（以配置文件为主，配合内置默认值）
	cfg := config.Load()
	log.WithFields(log.Fields{
		"env":        cfg.Env,
		"http_addr":  cfg.HTTPAddr,
		"mongo_uri":  cfg.Mongo.URIMasked(),
		"mongo_db":   cfg.Mongo.DBName,
		"redis_addr": cfg.Redis.Addr,
	}).Info("configuration loaded")

	// 初始化存储（MongoDB + Redis）
	client, db, err := storage.InitMongo(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect mongo")
	}
	defer storage.CloseMongo(client)

	rdb, err := storage.InitRedis(cfg)
	if err != nil {
		// Redis 仅承载限流与缓存，连不上时降级运行
		log.WithError(err).Warn("redis unavailable; rate limiting and caching disabled")
		rdb = nil
	} else {
		defer func() { _ = rdb.Close() }()
	}

	// 初始化核心服务
	var cache *services.BestCourseCache
	if rdb != nil {
		cache = services.NewBestCourseCache(rdb, cfg.Cache.BestCourseTTL)
	}
	courseSvc := services.NewCourseService(client, db, cache)
	categorySvc := services.NewCategoryService(db)
	reviewSvc := services.NewReviewService(db, cache)
	auditSvc := services.NewAuditService(db)

	// HTTP 路由与中间件
	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestID())
	router.Use(middlewares.RequestLogger())
	router.Use(middlewares.SecurityHeaders(cfg))
	router.Use(metrics.Handler())

	// 装载 HTTP 处理器
	h := handlers.New(cfg, client, courseSvc, categorySvc, reviewSvc, auditSvc, rdb)
	h.RegisterRoutes(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("starting http server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen")
		}
	}()

	// 优雅退出
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown")
	} else {
		log.Info("server stopped")
	}
}
