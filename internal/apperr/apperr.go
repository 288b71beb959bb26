// Package apperr 定义携带 HTTP 状态码的业务错误类型。
// 服务层抛出的错误最终在 HTTP 边界统一分类并渲染为错误信封。
package apperr

import (
	"errors"
	"net/http"
)

// Error 表示一个携带预期 HTTP 状态码的业务错误。
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// New 构造指定状态码的业务错误。
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// NotFound 构造 404 业务错误。
func NotFound(message string) *Error { return New(http.StatusNotFound, message) }

// BadRequest 构造 400 业务错误。
func BadRequest(message string) *Error { return New(http.StatusBadRequest, message) }

// As 提取错误链中的 *Error；不存在时返回 nil。
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// Wrap 将任意错误规整为业务错误：已是 *Error 的原样返回，
// 否则以给定状态码包装原始消息（事务中断后重新抛出时使用）。
func Wrap(err error, status int) *Error {
	if err == nil {
		return nil
	}
	if ae := As(err); ae != nil {
		return ae
	}
	return New(status, err.Error())
}
