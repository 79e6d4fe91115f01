package utils

import (
	"github.com/gin-gonic/gin"
)

// FieldError 单个字段的校验违规
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"message": message})
}

// BadRequest 返回400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

// Unauthorized 返回401错误
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "未登录"
	}
	Error(c, 401, message)
}

// NotFound 返回404错误
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "资源不存在"
	}
	Error(c, 404, message)
}

// Conflict 返回409错误
func Conflict(c *gin.Context, message string) {
	Error(c, 409, message)
}

// InternalServerError 返回500错误
func InternalServerError(c *gin.Context, message string) {
	if message == "" {
		message = "服务器内部错误"
	}
	Error(c, 500, message)
}

// ValidationFailed 返回400并逐条列出所有校验失败的字段
func ValidationFailed(c *gin.Context, errs []FieldError) {
	c.JSON(400, gin.H{
		"message": "参数校验失败",
		"errors":  errs,
	})
}
