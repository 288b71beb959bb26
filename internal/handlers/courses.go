package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adnan-Sarkar/course-review-backend/internal/metrics"
	"github.com/Adnan-Sarkar/course-review-backend/internal/services"
)

// createCourse 创建课程。durationInWeeks 由服务端从日期推导。
func (h *Handler) createCourse(c *gin.Context) {
	var in services.CreateCourseInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	course, err := h.courseSvc.Create(c, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	metrics.CoursesCreated.Inc()
	h.auditSvc.Write(c, "INFO", "COURSE_CREATED", course.ID.Hex(), "course created: "+course.Title, requestID(c), c.ClientIP())
	h.ok(c, http.StatusCreated, "Course created successfully", nil, course)
}

// listCourses 返回过滤、排序、分页后的课程列表。
func (h *Handler) listCourses(c *gin.Context) {
	q, err := services.ParseCourseListQuery(c.Request.URL.Query())
	if err != nil {
		h.fail(c, err)
		return
	}
	courses, err := h.courseSvc.List(c, q)
	if err != nil {
		h.fail(c, err)
		return
	}
	// total 沿用既有口径：当前页长度，而非全量匹配数
	meta := &Meta{Page: q.Page, Limit: q.Limit, Total: len(courses)}
	h.ok(c, http.StatusOK, "Courses retrieved successfully", meta, courses)
}

// courseWithReviews 返回课程与其评价；课程不存在时 course 为 null。
func (h *Handler) courseWithReviews(c *gin.Context) {
	result, err := h.courseSvc.GetWithReviews(c, c.Param("courseId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Course and Reviews retrieved successfully", nil, result)
}

// bestCourse 返回平均评分最高的课程（含均分与评价数）。
func (h *Handler) bestCourse(c *gin.Context) {
	best, err := h.courseSvc.Best(c)
	if err != nil {
		metrics.BestCourseLookups.WithLabelValues("error").Inc()
		h.fail(c, err)
		return
	}
	metrics.BestCourseLookups.WithLabelValues("ok").Inc()
	h.ok(c, http.StatusOK, "Best course retrieved successfully", nil, best)
}

// updateCourse 对课程做部分更新（单事务，全部成功或全部回滚）。
func (h *Handler) updateCourse(c *gin.Context) {
	var in services.UpdateCourseInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	id := c.Param("courseId")
	course, err := h.courseSvc.Update(c, id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	metrics.CoursesUpdated.Inc()
	h.auditSvc.Write(c, "INFO", "COURSE_UPDATED", id, "course updated", requestID(c), c.ClientIP())
	h.ok(c, http.StatusOK, "Course updated successfully", nil, course)
}
