package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Adnan-Sarkar/course-review-backend/internal/storage"
)

// AuditService 将审计日志持久化到数据库（仅追加，写入失败不影响请求）。
type AuditService struct{ db *mongo.Database }

func NewAuditService(db *mongo.Database) *AuditService { return &AuditService{db: db} }

// Write 写入一条审计日志。
func (s *AuditService) Write(ctx context.Context, level, event, entityID, desc, requestID, ip string) {
	_, _ = s.db.Collection(storage.CollAuditLogs).InsertOne(ctx, &storage.AuditRecord{
		Timestamp:   time.Now(),
		Level:       level,
		Event:       event,
		EntityID:    entityID,
		Description: desc,
		RequestID:   requestID,
		IPAddress:   ip,
	})
}
