package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Adnan-Sarkar/course-review-backend/internal/config"
	"github.com/Adnan-Sarkar/course-review-backend/internal/metrics"
	"github.com/Adnan-Sarkar/course-review-backend/internal/middlewares"
	"github.com/Adnan-Sarkar/course-review-backend/internal/services"
)

// Handler 聚合所有依赖（配置、存储、服务）并注册所有 HTTP 路由。
type Handler struct {
	cfg         config.Config
	client      *mongo.Client
	courseSvc   *services.CourseService
	categorySvc *services.CategoryService
	reviewSvc   *services.ReviewService
	auditSvc    *services.AuditService
	rdb         *redis.Client
}

// New 构造 Handler，将各领域服务注入，用于后续路由注册与处理。
func New(cfg config.Config, client *mongo.Client, courses *services.CourseService, categories *services.CategoryService, reviews *services.ReviewService, audit *services.AuditService, rdb *redis.Client) *Handler {
	return &Handler{cfg: cfg, client: client, courseSvc: courses, categorySvc: categories, reviewSvc: reviews, auditSvc: audit, rdb: rdb}
}

// RegisterRoutes 在 Gin 路由上挂载课程目录的全部端点。
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	window := h.cfg.Limits.Window
	if window <= 0 {
		window = time.Minute
	}
	writeLimit := func(prefix string) gin.HandlerFunc {
		if h.rdb == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middlewares.RateLimit(h.rdb, prefix, h.cfg.Limits.WritePerMinute, window, func(c *gin.Context) string {
			return c.ClientIP()
		})
	}

	api := r.Group("/api")
	{
		api.POST("/course", writeLimit("course"), h.createCourse)

		api.GET("/courses", h.listCourses)
		api.GET("/courses/best", h.bestCourse)
		api.GET("/courses/:courseId/reviews", h.courseWithReviews)
		api.PUT("/courses/:courseId", writeLimit("course"), h.updateCourse)

		api.POST("/categories", writeLimit("category"), h.createCategory)
		api.GET("/categories", h.listCategories)

		api.POST("/reviews", writeLimit("review"), h.createReview)
	}

	// 运维端点
	r.GET("/healthz", h.healthz)
	r.GET("/metrics", metrics.Exposer())

	// 未匹配路由返回统一 NotFound 信封
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorEnvelope{
			Message:      "API Not Found",
			ErrorMessage: "no route matches " + c.Request.URL.Path,
			ErrorDetails: gin.H{},
		})
	})
}

// healthz 检查 MongoDB 与 Redis 连通性。
func (h *Handler) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, 3*time.Second)
	defer cancel()

	if err := h.client.Ping(ctx, nil); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": err.Error()})
		return
	}
	if h.rdb != nil {
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestID 读取 RequestID 中间件写入的标识。
func requestID(c *gin.Context) string { return c.GetString(middlewares.ContextRequestID) }
