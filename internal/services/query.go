package services

import (
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/Adnan-Sarkar/course-review-backend/internal/apperr"
)

// 课程列表的默认分页参数。
const (
	defaultPage  = 1
	defaultLimit = 10
)

// sortProperties 为允许参与排序的字段白名单。
// 只要请求中出现任一白名单之外的字段，整个排序请求作废（整体校验，而非逐字段过滤）。
var sortProperties = map[string]bool{
	"title":           true,
	"price":           true,
	"startDate":       true,
	"endDate":         true,
	"language":        true,
	"durationInWeeks": true,
}

// CourseListQuery 为解析后的课程列表查询：分页、排序与过滤条件。
type CourseListQuery struct {
	Page   int
	Limit  int
	Sort   bson.D
	Filter bson.M
}

// Skip 返回分页偏移量。
func (q CourseListQuery) Skip() int64 { return int64((q.Page - 1) * q.Limit) }

// ParseCourseListQuery 将查询参数解析为结构化查询。
// 规则：
//   - page/limit 缺省为 1/10，小于 1 的值回退到缺省（避免负偏移）；
//   - sortBy 为逗号分隔字段列表，sortOrder 仅当恰为 "desc" 时降序；
//   - minPrice/maxPrice 仅在两者同时出现时生效（闭区间）；
//   - startDate/endDate 仅在两者同时出现且 startDate <= endDate（字符串比较）时，
//     分别对存储的 startDate 施加下界、endDate 施加上界；
//   - tags/language/provider/durationInWeeks/level 各自独立生效（非空时）。
func ParseCourseListQuery(params url.Values) (CourseListQuery, error) {
	q := CourseListQuery{Page: defaultPage, Limit: defaultLimit, Filter: bson.M{}}

	if v := params.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			q.Page = n
		}
	}
	if v := params.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			q.Limit = n
		}
	}

	// 排序：白名单整体校验
	if sortBy := params.Get("sortBy"); sortBy != "" {
		fields := strings.Split(sortBy, ",")
		allowSort := true
		for _, f := range fields {
			if !sortProperties[f] {
				allowSort = false
			}
		}
		if allowSort {
			order := 1
			if params.Get("sortOrder") == "desc" {
				order = -1
			}
			for _, f := range fields {
				q.Sort = append(q.Sort, bson.E{Key: f, Value: order})
			}
		}
	}

	// 价格区间：两端同时给定才生效
	minPrice := params.Get("minPrice")
	maxPrice := params.Get("maxPrice")
	if minPrice != "" && maxPrice != "" {
		lo, err := strconv.ParseFloat(minPrice, 64)
		if err != nil {
			return q, apperr.BadRequest("minPrice must be a number")
		}
		hi, err := strconv.ParseFloat(maxPrice, 64)
		if err != nil {
			return q, apperr.BadRequest("maxPrice must be a number")
		}
		q.Filter["price"] = bson.M{"$gte": lo, "$lte": hi}
	}

	// 日期区间：两端同时给定且 start <= end（ISO 字符串的字典序即时间序）。
	// 注意这是对 startDate 与 endDate 的两个独立单边界，而非真正的区间相交。
	startDate := params.Get("startDate")
	endDate := params.Get("endDate")
	if startDate != "" && endDate != "" && startDate <= endDate {
		q.Filter["startDate"] = bson.M{"$gte": startDate}
		q.Filter["endDate"] = bson.M{"$lte": endDate}
	}

	// 等值过滤
	if tag := params.Get("tags"); tag != "" {
		q.Filter["tags.name"] = tag
	}
	if language := params.Get("language"); language != "" {
		q.Filter["language"] = language
	}
	if provider := params.Get("provider"); provider != "" {
		q.Filter["provider"] = provider
	}
	if duration := params.Get("durationInWeeks"); duration != "" {
		n, err := strconv.Atoi(duration)
		if err != nil {
			return q, apperr.BadRequest("durationInWeeks must be an integer")
		}
		q.Filter["durationInWeeks"] = n
	}
	if level := params.Get("level"); level != "" {
		q.Filter["details.level"] = level
	}

	return q, nil
}
