package response

import (
	"errors"
	"net/http"

	"github.com/code-100-precent/LingMeme/pkg/utils"
	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// Result 自定义 HTTP 状态码与业务码
func Result(c *gin.Context, httpStatus, code int, msg string, data any) {
	c.JSON(httpStatus, Response{Code: code, Msg: msg, Data: data})
}

// Success 成功响应
func Success(c *gin.Context, msg string, data any) {
	Result(c, http.StatusOK, http.StatusOK, msg, data)
}

// Fail 业务失败，HTTP 状态仍为 200
func Fail(c *gin.Context, msg string, data any) {
	Result(c, http.StatusOK, http.StatusInternalServerError, msg, data)
}

// Error 按错误携带的状态码中断请求
func Error(c *gin.Context, err error) {
	status := utils.StatusOf(err)
	msg := err.Error()
	var ue *utils.Error
	if errors.As(err, &ue) {
		msg = ue.Message
	}
	c.AbortWithStatusJSON(status, Response{Code: status, Msg: msg})
}

func AbortWithStatus(c *gin.Context, status int) {
	c.AbortWithStatus(status)
}

func AbortWithStatusJSON(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
