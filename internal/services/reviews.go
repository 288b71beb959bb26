package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Adnan-Sarkar/course-review-backend/internal/apperr"
	"github.com/Adnan-Sarkar/course-review-backend/internal/storage"
)

// ReviewService 提供评价的创建。评价持有对课程的非拥有引用。
type ReviewService struct {
	db    *mongo.Database
	cache *BestCourseCache
}

// NewReviewService 构造评价服务；cache 可为 nil。
func NewReviewService(db *mongo.Database, cache *BestCourseCache) *ReviewService {
	return &ReviewService{db: db, cache: cache}
}

// CreateReviewInput 为创建评价的载荷。
type CreateReviewInput struct {
	CourseID string  `json:"courseId" binding:"required,len=24,hexadecimal"`
	Rating   float64 `json:"rating" binding:"required,gte=1,lte=5"`
	Review   string  `json:"review" binding:"required"`
}

// Create 创建评价。引用的课程必须存在；写入成功后最佳课程缓存失效。
func (s *ReviewService) Create(ctx context.Context, in CreateReviewInput) (*storage.Review, error) {
	oid, err := primitive.ObjectIDFromHex(in.CourseID)
	if err != nil {
		return nil, err
	}

	count, err := s.db.Collection(storage.CollCourses).CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperr.NotFound(fmt.Sprintf("course %s not found", in.CourseID))
	}

	review := &storage.Review{CourseID: oid, Rating: in.Rating, Review: in.Review}
	res, err := s.db.Collection(storage.CollReviews).InsertOne(ctx, review)
	if err != nil {
		return nil, err
	}
	review.ID = res.InsertedID.(primitive.ObjectID)

	s.cache.Invalidate(ctx)
	return review, nil
}
