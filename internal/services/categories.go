package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Adnan-Sarkar/course-review-backend/internal/storage"
)

// CategoryService 提供分类的创建与查询（创建后不可变）。
type CategoryService struct{ db *mongo.Database }

func NewCategoryService(db *mongo.Database) *CategoryService { return &CategoryService{db: db} }

func (s *CategoryService) categories() *mongo.Collection {
	return s.db.Collection(storage.CollCategories)
}

// CreateCategoryInput 为创建分类的载荷。
type CreateCategoryInput struct {
	Name string `json:"name" binding:"required"`
}

// Create 创建分类。名称唯一约束由存储层索引保证。
func (s *CategoryService) Create(ctx context.Context, in CreateCategoryInput) (*storage.Category, error) {
	cat := &storage.Category{Name: in.Name}
	res, err := s.categories().InsertOne(ctx, cat)
	if err != nil {
		return nil, err
	}
	cat.ID = res.InsertedID.(primitive.ObjectID)
	return cat, nil
}

// List 返回全部分类。
func (s *CategoryService) List(ctx context.Context) ([]storage.Category, error) {
	cur, err := s.categories().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	result := make([]storage.Category, 0)
	if err := cur.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}
