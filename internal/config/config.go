package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Config 保存进程级配置（仅使用配置文件或内置默认值）。
// 字段提供开发友好的默认值；生产环境请在 config.yaml 中覆盖。
type Config struct {
	Env      string
	HTTPAddr string
	Mongo    MongoConfig
	Redis    RedisConfig
	Limits   LimitConfig
	Cache    CacheConfig
	Security SecurityConfig
}

type MongoConfig struct {
	URI    string
	DBName string
	// 连接与健康检查超时
	Timeout time.Duration
}

// URIMasked 返回脱敏后的连接串（隐藏 userinfo 部分），用于启动日志。
func (m MongoConfig) URIMasked() string {
	uri := m.URI
	at := strings.LastIndex(uri, "@")
	if at < 0 {
		return uri
	}
	scheme := strings.Index(uri, "://")
	if scheme < 0 || scheme+3 > at {
		return uri
	}
	return uri[:scheme+3] + "******" + uri[at:]
}

type RedisConfig struct {
	Addr     string
	DB       int
	Password string
}

// LimitConfig 控制写接口的限流（Redis INCR+TTL 实现）。
type LimitConfig struct {
	WritePerMinute int
	// 时间窗口（默认 1m）
	Window time.Duration
}

// CacheConfig 控制查询结果缓存（目前仅最佳课程）。
type CacheConfig struct {
	BestCourseTTL time.Duration
}

type SecurityConfig struct {
	HSTS struct {
		Enabled           bool
		MaxAgeSeconds     int
		IncludeSubdomains bool
	}
}

// Load 生成配置：先使用内置默认值，再用同目录的配置文件（config.yaml/yml/json）覆盖。
// 默认：MongoDB 127.0.0.1:27017 库 course_review；Redis 127.0.0.1:6379 无密码。
func Load() Config {
	// 1) 默认值（本地开发可直接运行）
	cfg := Config{
		Env:      "dev",
		HTTPAddr: ":3500",
		Mongo:    MongoConfig{URI: "mongodb://127.0.0.1:27017", DBName: "course_review", Timeout: 10 * time.Second},
		Redis:    RedisConfig{Addr: "127.0.0.1:6379", DB: 0, Password: ""},
		Limits:   LimitConfig{WritePerMinute: 60, Window: time.Minute},
		Cache:    CacheConfig{BestCourseTTL: 30 * time.Second},
		Security: func() SecurityConfig {
			var s SecurityConfig
			s.HSTS.Enabled = true
			s.HSTS.MaxAgeSeconds = 31536000
			s.HSTS.IncludeSubdomains = true
			return s
		}(),
	}

	// 2) 配置文件覆盖（若存在）
	if path := FirstExisting("config.yaml", "config.yml", "config.json"); path != "" {
		_ = loadFromFile(path, &cfg)
	}
	return cfg
}

// 配置文件格式：YAML 或 JSON。仅非零值会覆盖现有字段。
func loadFromFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var fm fileModel
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(b, &fm); err != nil {
			return err
		}
	} else if ext == ".json" || ext == "" {
		if err := json.Unmarshal(b, &fm); err != nil {
			return err
		}
	} else {
		return errors.New("unsupported config file format")
	}
	fm.apply(cfg)
	return nil
}

// --- 配置文件模型与合并逻辑 ---

type fileModel struct {
	Env      string        `yaml:"env" json:"env"`
	HTTPAddr string        `yaml:"http_addr" json:"http_addr"`
	Mongo    *fileMongo    `yaml:"mongo" json:"mongo"`
	Redis    *fileRedis    `yaml:"redis" json:"redis"`
	Limits   *fileLimits   `yaml:"limits" json:"limits"`
	Cache    *fileCache    `yaml:"cache" json:"cache"`
	Security *fileSecurity `yaml:"security" json:"security"`
}

type fileMongo struct {
	URI     string `yaml:"uri" json:"uri"`
	DBName  string `yaml:"db" json:"db"`
	Timeout string `yaml:"timeout" json:"timeout"`
}
type fileRedis struct {
	Addr     string `yaml:"addr" json:"addr"`
	DB       int    `yaml:"db" json:"db"`
	Password string `yaml:"password" json:"password"`
}
type fileLimits struct {
	WritePerMinute int    `yaml:"write_per_minute" json:"write_per_minute"`
	Window         string `yaml:"window" json:"window"`
}
type fileCache struct {
	BestCourseTTL string `yaml:"best_course_ttl" json:"best_course_ttl"`
}
type fileSecurity struct {
	HSTS struct {
		Enabled           *bool `yaml:"enabled" json:"enabled"`
		MaxAge            int   `yaml:"max_age" json:"max_age"`
		IncludeSubdomains *bool `yaml:"include_subdomains" json:"include_subdomains"`
	} `yaml:"hsts" json:"hsts"`
}

func (fm *fileModel) apply(cfg *Config) {
	if fm.Env != "" {
		cfg.Env = fm.Env
	}
	if fm.HTTPAddr != "" {
		cfg.HTTPAddr = fm.HTTPAddr
	}
	if fm.Mongo != nil {
		if fm.Mongo.URI != "" {
			cfg.Mongo.URI = fm.Mongo.URI
		}
		if fm.Mongo.DBName != "" {
			cfg.Mongo.DBName = fm.Mongo.DBName
		}
		if fm.Mongo.Timeout != "" {
			if d, err := time.ParseDuration(fm.Mongo.Timeout); err == nil {
				cfg.Mongo.Timeout = d
			}
		}
	}
	if fm.Redis != nil {
		if fm.Redis.Addr != "" {
			cfg.Redis.Addr = fm.Redis.Addr
		}
		if fm.Redis.DB != 0 {
			cfg.Redis.DB = fm.Redis.DB
		}
		if fm.Redis.Password != "" {
			cfg.Redis.Password = fm.Redis.Password
		}
	}
	if fm.Limits != nil {
		if fm.Limits.WritePerMinute != 0 {
			cfg.Limits.WritePerMinute = fm.Limits.WritePerMinute
		}
		if fm.Limits.Window != "" {
			if d, err := time.ParseDuration(fm.Limits.Window); err == nil {
				cfg.Limits.Window = d
			}
		}
	}
	if fm.Cache != nil {
		if fm.Cache.BestCourseTTL != "" {
			if d, err := time.ParseDuration(fm.Cache.BestCourseTTL); err == nil {
				cfg.Cache.BestCourseTTL = d
			}
		}
	}
	if fm.Security != nil {
		if fm.Security.HSTS.Enabled != nil {
			cfg.Security.HSTS.Enabled = *fm.Security.HSTS.Enabled
		}
		if fm.Security.HSTS.MaxAge != 0 {
			cfg.Security.HSTS.MaxAgeSeconds = fm.Security.HSTS.MaxAge
		}
		if fm.Security.HSTS.IncludeSubdomains != nil {
			cfg.Security.HSTS.IncludeSubdomains = *fm.Security.HSTS.IncludeSubdomains
		}
	}
}

// FirstExisting 按顺序返回第一个存在的文件路径；若都不存在则返回空字符串。
func FirstExisting(paths ...string) string {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
