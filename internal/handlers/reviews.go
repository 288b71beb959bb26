package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adnan-Sarkar/course-review-backend/internal/metrics"
	"github.com/Adnan-Sarkar/course-review-backend/internal/services"
)

// createReview 创建课程评价；引用的课程必须存在。
func (h *Handler) createReview(c *gin.Context) {
	var in services.CreateReviewInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	review, err := h.reviewSvc.Create(c, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	metrics.ReviewsCreated.Inc()
	h.auditSvc.Write(c, "INFO", "REVIEW_CREATED", review.ID.Hex(), "review created for course "+in.CourseID, requestID(c), c.ClientIP())
	h.ok(c, http.StatusCreated, "Review created successfully", nil, review)
}
