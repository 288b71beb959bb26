package handlers

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Adnan-Sarkar/course-review-backend/internal/apperr"
)

// Meta 为列表响应的分页元数据。
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// successEnvelope 为统一成功信封。
type successEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Meta    *Meta       `json:"meta,omitempty"`
	Data    interface{} `json:"data"`
}

// errorEnvelope 为统一错误信封。Stack 仅在非生产环境填充。
type errorEnvelope struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	ErrorMessage string      `json:"errorMessage"`
	ErrorDetails interface{} `json:"errorDetails"`
	Stack        string      `json:"stack"`
}

// fieldViolation 描述一条校验失败的字段。
type fieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ok 渲染统一成功信封。
func (h *Handler) ok(c *gin.Context, status int, message string, meta *Meta, data interface{}) {
	c.JSON(status, successEnvelope{Success: true, Message: message, Meta: meta, Data: data})
}

// fail 在 HTTP 边界统一分类错误并渲染错误信封。
// 状态码按错误种类映射：校验/类型转换 400、唯一键冲突 409、
// 未找到 404、业务错误取其携带的状态码、其余 500。
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	env := errorEnvelope{
		Message:      "Something went wrong",
		ErrorMessage: err.Error(),
		ErrorDetails: gin.H{},
	}

	var verrs validator.ValidationErrors
	var jsonSyntax *json.SyntaxError
	var jsonType *json.UnmarshalTypeError
	var hexErr hex.InvalidByteError

	switch {
	case errors.As(err, &verrs):
		// 校验错误：列出全部违例字段，而非只报第一条
		status = http.StatusBadRequest
		env.Message = "Validation Error"
		violations := make([]fieldViolation, 0, len(verrs))
		for _, ve := range verrs {
			violations = append(violations, fieldViolation{
				Field:   ve.Field(),
				Message: violationMessage(ve),
			})
		}
		env.ErrorDetails = violations
	case errors.As(err, &jsonSyntax), errors.As(err, &jsonType), errors.Is(err, errBodyRequired):
		status = http.StatusBadRequest
		env.Message = "Malformed request body"
	case errors.Is(err, primitive.ErrInvalidHex), errors.As(err, &hexErr):
		// CastError：非法标识符
		status = http.StatusBadRequest
		env.Message = "Invalid ID"
	case mongo.IsDuplicateKeyError(err):
		status = http.StatusConflict
		env.Message = "Duplicate entry"
	case errors.Is(err, mongo.ErrNoDocuments):
		status = http.StatusNotFound
		env.Message = "Not Found"
	default:
		if ae := apperr.As(err); ae != nil {
			status = ae.Status
			env.Message = http.StatusText(ae.Status)
		}
	}

	if h.cfg.Env != "prod" {
		env.Stack = string(debug.Stack())
	}
	c.AbortWithStatusJSON(status, env)
}

// errBodyRequired 标记空请求体（EOF）这类绑定失败。
var errBodyRequired = errors.New("request body required")

// bindJSON 绑定并校验 JSON 载荷；空请求体规整为统一错误。
func bindJSON(c *gin.Context, out interface{}) error {
	if err := c.ShouldBindJSON(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errBodyRequired
		}
		return err
	}
	return nil
}

// violationMessage 将单条校验失败翻译为可读信息。
func violationMessage(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return ve.Field() + " is required"
	case "gt", "gte":
		return ve.Field() + " must be greater than " + ve.Param()
	case "lte":
		return ve.Field() + " must be at most " + ve.Param()
	case "oneof":
		return ve.Field() + " must be one of: " + ve.Param()
	case "datetime":
		return ve.Field() + " must be a date formatted as " + ve.Param()
	case "len", "hexadecimal":
		return ve.Field() + " must be a valid object id"
	default:
		return ve.Field() + " is invalid"
	}
}
