package services

import (
	"context"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Adnan-Sarkar/course-review-backend/internal/apperr"
	"github.com/Adnan-Sarkar/course-review-backend/internal/storage"
	"github.com/Adnan-Sarkar/course-review-backend/internal/utils"
)

// CourseService 封装课程的创建、检索、聚合与更新逻辑。
// 多步读写（最佳课程、课程更新）通过 Mongo 会话事务保证原子性。
type CourseService struct {
	client *mongo.Client
	db     *mongo.Database
	cache  *BestCourseCache
}

// NewCourseService 构造课程服务；cache 可为 nil（禁用缓存）。
func NewCourseService(client *mongo.Client, db *mongo.Database, cache *BestCourseCache) *CourseService {
	return &CourseService{client: client, db: db, cache: cache}
}

func (s *CourseService) courses() *mongo.Collection { return s.db.Collection(storage.CollCourses) }
func (s *CourseService) reviews() *mongo.Collection { return s.db.Collection(storage.CollReviews) }

// --- 请求载荷 ---

// TagInput 为标签载荷。IsDeleted 仅在更新时用于把条目路由到删除集或新增集。
type TagInput struct {
	Name      string `json:"name" binding:"required"`
	IsDeleted bool   `json:"isDeleted"`
}

// CourseDetailsInput 为课程详情载荷。
type CourseDetailsInput struct {
	Level       string `json:"level" binding:"required,oneof=Beginner Intermediate Advanced"`
	Description string `json:"description"`
}

// CreateCourseInput 为创建课程的载荷。durationInWeeks 不可由客户端提交，
// 始终由 startDate/endDate 推导。
type CreateCourseInput struct {
	Title      string             `json:"title" binding:"required"`
	Instructor string             `json:"instructor"`
	CategoryID string             `json:"categoryId" binding:"omitempty,len=24,hexadecimal"`
	Price      float64            `json:"price" binding:"required,gt=0"`
	Tags       []TagInput         `json:"tags" binding:"omitempty,dive"`
	StartDate  string             `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate    string             `json:"endDate" binding:"required,datetime=2006-01-02"`
	Language   string             `json:"language" binding:"required"`
	Provider   string             `json:"provider" binding:"required"`
	Details    CourseDetailsInput `json:"details" binding:"required"`
}

// UpdateCourseInput 为部分更新载荷：顶层字段按出现合并，details 以点路径合并，
// tags 以集合代数合并（isDeleted 决定删除或新增）。
type UpdateCourseInput struct {
	Title           *string                `json:"title"`
	Instructor      *string                `json:"instructor"`
	CategoryID      *string                `json:"categoryId" binding:"omitempty,len=24,hexadecimal"`
	Price           *float64               `json:"price" binding:"omitempty,gt=0"`
	Tags            []TagInput             `json:"tags" binding:"omitempty,dive"`
	StartDate       *string                `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate         *string                `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	Language        *string                `json:"language"`
	Provider        *string                `json:"provider"`
	DurationInWeeks *int                   `json:"durationInWeeks"`
	Details         map[string]interface{} `json:"details"`
}

// CourseWithReviews 为课程详情查询结果。课程不存在时 Course 为 null（不报错）。
type CourseWithReviews struct {
	Course  *storage.Course  `json:"course"`
	Reviews []storage.Review `json:"reviews"`
}

// --- 操作 ---

// Create 创建课程，durationInWeeks 由日期推导后落库。
func (s *CourseService) Create(ctx context.Context, in CreateCourseInput) (*storage.Course, error) {
	weeks, err := utils.WeeksBetween(in.StartDate, in.EndDate)
	if err != nil {
		return nil, apperr.BadRequest(err.Error())
	}
	course := &storage.Course{
		Title:           in.Title,
		Instructor:      in.Instructor,
		Price:           in.Price,
		Tags:            tagsFromInput(in.Tags),
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Language:        in.Language,
		Provider:        in.Provider,
		DurationInWeeks: weeks,
		Details:         storage.CourseDetails{Level: in.Details.Level, Description: in.Details.Description},
	}
	if in.CategoryID != "" {
		cid, err := primitive.ObjectIDFromHex(in.CategoryID)
		if err != nil {
			return nil, err
		}
		course.CategoryID = cid
	}
	res, err := s.courses().InsertOne(ctx, course)
	if err != nil {
		return nil, err
	}
	course.ID = res.InsertedID.(primitive.ObjectID)
	return course, nil
}

// List 按解析后的查询返回一页课程（先过滤、再排序、后分页；每次调用独立执行）。
func (s *CourseService) List(ctx context.Context, q CourseListQuery) ([]storage.Course, error) {
	opts := options.Find().
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))
	if len(q.Sort) > 0 {
		opts.SetSort(q.Sort)
	}
	cur, err := s.courses().Find(ctx, q.Filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	result := make([]storage.Course, 0, q.Limit)
	if err := cur.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetWithReviews 返回课程与其全部评价。课程不存在时 course 为 null，评价照常查询。
func (s *CourseService) GetWithReviews(ctx context.Context, id string) (*CourseWithReviews, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	out := &CourseWithReviews{Reviews: []storage.Review{}}
	var course storage.Course
	err = s.courses().FindOne(ctx, bson.M{"_id": oid}).Decode(&course)
	if err == nil {
		out.Course = &course
	} else if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// 仅投影 courseId/rating/review
	opts := options.Find().SetProjection(bson.M{"courseId": 1, "rating": 1, "review": 1})
	cur, err := s.reviews().Find(ctx, bson.M{"courseId": oid}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &out.Reviews); err != nil {
		return nil, err
	}
	return out, nil
}

// Best 在单个事务内执行两步：聚合求各课程均分并取第一名，再回查课程本体。
// 结果附加 averageRating/reviewCount。缓存命中时直接返回，不开启事务。
func (s *CourseService) Best(ctx context.Context) (*storage.BestCourse, error) {
	if best, ok := s.cache.Get(ctx); ok {
		return best, nil
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return nil, apperr.Wrap(err, http.StatusBadRequest)
	}
	// 会话在任何退出路径上都会结束
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		pipeline := mongo.Pipeline{
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$courseId"},
				{Key: "averageRating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
				{Key: "reviewCount", Value: bson.D{{Key: "$sum", Value: 1}}},
			}}},
			{{Key: "$sort", Value: bson.D{{Key: "averageRating", Value: -1}}}},
			{{Key: "$limit", Value: 1}},
		}
		cur, err := s.reviews().Aggregate(sc, pipeline)
		if err != nil {
			return nil, err
		}
		var groups []struct {
			CourseID      primitive.ObjectID `bson:"_id"`
			AverageRating float64            `bson:"averageRating"`
			ReviewCount   int64              `bson:"reviewCount"`
		}
		if err := cur.All(sc, &groups); err != nil {
			return nil, err
		}
		if len(groups) == 0 {
			return nil, apperr.NotFound("no best course found")
		}
		top := groups[0]

		var course storage.Course
		if err := s.courses().FindOne(sc, bson.M{"_id": top.CourseID}).Decode(&course); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.NotFound(fmt.Sprintf("course %s not found", top.CourseID.Hex()))
			}
			return nil, err
		}
		return &storage.BestCourse{
			Course:        course,
			AverageRating: top.AverageRating,
			ReviewCount:   top.ReviewCount,
		}, nil
	})
	if err != nil {
		// 非业务错误在事务中断后统一以 BadRequest 重新抛出（保留原始消息）
		return nil, apperr.Wrap(err, http.StatusBadRequest)
	}

	best := result.(*storage.BestCourse)
	s.cache.Set(ctx, best)
	return best, nil
}

// Update 在单个事务内按顺序应用部分更新：
//  1. 直接提交 durationInWeeks 而不带新日期的载荷被拒绝（不触达存储）；
//  2. 提交了任一日期时，结合存量记录重新推导 durationInWeeks；
//  3. 嵌套 details 展开为点路径，避免覆盖兄弟字段；
//  4. 顶层字段 + 推导字段 + 点路径字段合并为一次 $set；
//  5. tags 按 isDeleted 分组：先 $pull 删除集，再 $addToSet 新增集，
//     任一更新未匹配到课程文档即失败；
//  6. 回读并返回更新后的完整记录。
//
// 任一步骤失败都会中断事务并回滚。
func (s *CourseService) Update(ctx context.Context, id string, in UpdateCourseInput) (*storage.Course, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	// 派生字段保护：durationInWeeks 只能随日期一起变化
	if in.DurationInWeeks != nil && in.StartDate == nil && in.EndDate == nil {
		return nil, apperr.BadRequest("durationInWeeks cannot be set directly; provide startDate/endDate instead")
	}

	// details 以松散映射承载点路径合并，枚举与类型约束在此补齐（与创建一致）
	if err := validateDetailsUpdate(in.Details); err != nil {
		return nil, err
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return nil, apperr.Wrap(err, http.StatusBadRequest)
	}
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		set := bson.M{}
		if in.Title != nil {
			set["title"] = *in.Title
		}
		if in.Instructor != nil {
			set["instructor"] = *in.Instructor
		}
		if in.Price != nil {
			set["price"] = *in.Price
		}
		if in.Language != nil {
			set["language"] = *in.Language
		}
		if in.Provider != nil {
			set["provider"] = *in.Provider
		}
		if in.CategoryID != nil {
			cid, err := primitive.ObjectIDFromHex(*in.CategoryID)
			if err != nil {
				return nil, err
			}
			set["categoryId"] = cid
		}

		// 日期变化时重新推导周数：缺失的一端取存量值
		if in.StartDate != nil || in.EndDate != nil {
			var current storage.Course
			if err := s.courses().FindOne(sc, bson.M{"_id": oid}).Decode(&current); err != nil {
				if err == mongo.ErrNoDocuments {
					return nil, apperr.NotFound(fmt.Sprintf("course %s not found", id))
				}
				return nil, err
			}
			start, end := current.StartDate, current.EndDate
			if in.StartDate != nil {
				start = *in.StartDate
				set["startDate"] = start
			}
			if in.EndDate != nil {
				end = *in.EndDate
				set["endDate"] = end
			}
			weeks, err := utils.WeeksBetween(start, end)
			if err != nil {
				return nil, apperr.BadRequest(err.Error())
			}
			set["durationInWeeks"] = weeks
		}

		// 嵌套详情按点路径合并
		if len(in.Details) > 0 {
			utils.FlattenInto(set, "details", in.Details)
		}

		if len(set) > 0 {
			if _, err := s.courses().UpdateOne(sc, bson.M{"_id": oid}, bson.M{"$set": set}); err != nil {
				return nil, err
			}
		}

		// 标签集合代数：先删除集，再新增集
		if len(in.Tags) > 0 {
			var removed []string
			var added []storage.Tag
			for _, t := range in.Tags {
				if t.IsDeleted {
					removed = append(removed, t.Name)
				} else {
					added = append(added, storage.Tag{Name: t.Name})
				}
			}
			if len(removed) > 0 {
				res, err := s.courses().UpdateOne(sc, bson.M{"_id": oid}, bson.M{
					"$pull": bson.M{"tags": bson.M{"name": bson.M{"$in": removed}}},
				})
				if err != nil {
					return nil, err
				}
				if res.MatchedCount == 0 {
					return nil, apperr.BadRequest("remove tags not successful")
				}
			}
			if len(added) > 0 {
				res, err := s.courses().UpdateOne(sc, bson.M{"_id": oid}, bson.M{
					"$addToSet": bson.M{"tags": bson.M{"$each": added}},
				})
				if err != nil {
					return nil, err
				}
				if res.MatchedCount == 0 {
					return nil, apperr.BadRequest("add tags not successful")
				}
			}
		}

		var updated storage.Course
		if err := s.courses().FindOne(sc, bson.M{"_id": oid}).Decode(&updated); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperr.NotFound(fmt.Sprintf("course %s not found", id))
			}
			return nil, err
		}
		return &updated, nil
	})
	if err != nil {
		return nil, apperr.Wrap(err, http.StatusBadRequest)
	}

	s.cache.Invalidate(ctx)
	return result.(*storage.Course), nil
}

// allowedLevels 为 details.level 的合法取值（与创建载荷的枚举一致）。
var allowedLevels = map[string]bool{"Beginner": true, "Intermediate": true, "Advanced": true}

// validateDetailsUpdate 校验部分更新的 details：只接受已知字段，
// level 受与创建相同的枚举约束。
func validateDetailsUpdate(details map[string]interface{}) error {
	for k, v := range details {
		switch k {
		case "level":
			s, ok := v.(string)
			if !ok || !allowedLevels[s] {
				return apperr.BadRequest("details.level must be one of: Beginner, Intermediate, Advanced")
			}
		case "description":
			if _, ok := v.(string); !ok {
				return apperr.BadRequest("details.description must be a string")
			}
		default:
			return apperr.BadRequest("unknown details field: " + k)
		}
	}
	return nil
}

func tagsFromInput(in []TagInput) []storage.Tag {
	tags := make([]storage.Tag, 0, len(in))
	for _, t := range in {
		tags = append(tags, storage.Tag{Name: t.Name})
	}
	return tags
}
