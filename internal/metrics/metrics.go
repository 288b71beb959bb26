package metrics

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 指标定义：
// - http_requests_total：按路径与方法统计请求次数（附带状态码标签）
// - http_request_duration_seconds：按路径与方法统计请求耗时分布
// - 领域计数：课程/分类/评价创建数、最佳课程查询数、限流拒绝数
var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP 请求计数（按路径/方法/状态）"},
		[]string{"path", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP 请求耗时（秒）", Buckets: prometheus.DefBuckets},
		[]string{"path", "method"},
	)
	CoursesCreated    = prometheus.NewCounter(prometheus.CounterOpts{Name: "courses_created_total", Help: "创建课程总数"})
	CoursesUpdated    = prometheus.NewCounter(prometheus.CounterOpts{Name: "courses_updated_total", Help: "更新课程总数"})
	CategoriesCreated = prometheus.NewCounter(prometheus.CounterOpts{Name: "categories_created_total", Help: "创建分类总数"})
	ReviewsCreated    = prometheus.NewCounter(prometheus.CounterOpts{Name: "reviews_created_total", Help: "创建评价总数"})
	BestCourseLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "best_course_lookups_total", Help: "最佳课程查询计数（按结果）"},
		[]string{"outcome"},
	)
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rate_limited_total", Help: "限流拒绝计数（按端点前缀）"},
		[]string{"prefix"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatency, CoursesCreated, CoursesUpdated, CategoriesCreated, ReviewsCreated, BestCourseLookups, RateLimited)
}

// Handler 返回记录基础 HTTP 指标的中间件（QPS/耗时）。
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dur := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		HTTPLatency.WithLabelValues(path, c.Request.Method).Observe(dur)
		HTTPRequests.WithLabelValues(path, c.Request.Method, fmt.Sprintf("%d", c.Writer.Status())).Inc()
	}
}

// Exposer 返回标准 Prometheus 暴露处理器。
func Exposer() gin.HandlerFunc { return gin.WrapH(promhttp.Handler()) }
