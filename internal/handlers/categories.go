package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adnan-Sarkar/course-review-backend/internal/metrics"
	"github.com/Adnan-Sarkar/course-review-backend/internal/services"
)

// createCategory 创建分类（名称唯一）。
func (h *Handler) createCategory(c *gin.Context) {
	var in services.CreateCategoryInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	category, err := h.categorySvc.Create(c, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	metrics.CategoriesCreated.Inc()
	h.auditSvc.Write(c, "INFO", "CATEGORY_CREATED", category.ID.Hex(), "category created: "+category.Name, requestID(c), c.ClientIP())
	h.ok(c, http.StatusCreated, "Category created successfully", nil, category)
}

// listCategories 返回全部分类。
func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.categorySvc.List(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, "Categories retrieved successfully", nil, categories)
}
