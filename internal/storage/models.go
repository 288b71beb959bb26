package storage

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 本文件集中声明各集合的文档模型。
// 日期（startDate/endDate）按 ISO 格式字符串（YYYY-MM-DD）存储，
// 区间过滤依赖其字典序与时间序一致的性质。

// Tag 为课程内嵌的标签值对象。IsDeleted 仅作为更新载荷的路由标记，
// 不落库（bson:"-"）：true 的条目进入删除集，false 的进入新增集。
type Tag struct {
	Name      string `bson:"name" json:"name"`
	IsDeleted bool   `bson:"-" json:"isDeleted,omitempty"`
}

// CourseDetails 为课程的嵌套详情。
type CourseDetails struct {
	Level       string `bson:"level" json:"level"`
	Description string `bson:"description" json:"description"`
}

// Course 课程文档。DurationInWeeks 由 startDate/endDate 推导，客户端不可直接设置。
type Course struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title           string             `bson:"title" json:"title"`
	Instructor      string             `bson:"instructor,omitempty" json:"instructor,omitempty"`
	CategoryID      primitive.ObjectID `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	Price           float64            `bson:"price" json:"price"`
	Tags            []Tag              `bson:"tags" json:"tags"`
	StartDate       string             `bson:"startDate" json:"startDate"`
	EndDate         string             `bson:"endDate" json:"endDate"`
	Language        string             `bson:"language" json:"language"`
	Provider        string             `bson:"provider" json:"provider"`
	DurationInWeeks int                `bson:"durationInWeeks" json:"durationInWeeks"`
	Details         CourseDetails      `bson:"details" json:"details"`
}

// BestCourse 为最佳课程查询结果：课程本体平铺，附加聚合得到的均分与评论数。
type BestCourse struct {
	Course
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int64   `json:"reviewCount"`
}

// Category 课程分类。创建后不可变。
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name string             `bson:"name" json:"name"`
}

// Review 课程评价。CourseID 为对课程的非拥有引用。
type Review struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	CourseID primitive.ObjectID `bson:"courseId" json:"courseId"`
	Rating   float64            `bson:"rating" json:"rating"`
	Review   string             `bson:"review" json:"review"`
}

// AuditRecord 审计日志文档（仅追加，不参与业务读路径）。
type AuditRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp   time.Time          `bson:"timestamp"`
	Level       string             `bson:"level"`
	Event       string             `bson:"event"`
	EntityID    string             `bson:"entityId,omitempty"`
	Description string             `bson:"description"`
	RequestID   string             `bson:"requestId,omitempty"`
	IPAddress   string             `bson:"ipAddress,omitempty"`
}

// 集合名常量，供服务层统一引用。
const (
	CollCourses    = "courses"
	CollCategories = "categories"
	CollReviews    = "reviews"
	CollAuditLogs  = "audit_logs"
)
