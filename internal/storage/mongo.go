package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Adnan-Sarkar/course-review-backend/internal/config"
)

// InitMongo 连接 MongoDB 并做一次 Ping 验证，随后确保索引存在。
// 返回客户端与业务数据库句柄；事务需要客户端发起会话。
func InitMongo(ctx context.Context, cfg config.Config) (*mongo.Client, *mongo.Database, error) {
	cctx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Mongo.DBName)
	if err := ensureIndexes(cctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, db, nil
}

// CloseMongo 断开客户端连接。
func CloseMongo(client *mongo.Client) {
	if client == nil {
		return
	}
	_ = client.Disconnect(context.Background())
}

// ensureIndexes 确保唯一约束与查询索引存在（幂等）。
// 唯一约束触发的重复键错误在 HTTP 边界分类为 DuplicateKeyError。
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	if _, err := db.Collection(CollCourses).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "title", Value: 1}}, Options: unique,
	}); err != nil {
		return fmt.Errorf("ensure courses.title index: %w", err)
	}
	if _, err := db.Collection(CollCategories).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}}, Options: unique,
	}); err != nil {
		return fmt.Errorf("ensure categories.name index: %w", err)
	}
	if _, err := db.Collection(CollReviews).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "courseId", Value: 1}},
	}); err != nil {
		return fmt.Errorf("ensure reviews.courseId index: %w", err)
	}
	return nil
}
