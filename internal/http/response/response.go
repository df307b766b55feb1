package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey gin 上下文中请求 ID 的键
const RequestIDKey = "request_id"

// Envelope 统一响应外壳，HTTP 状态恒为 200
type Envelope struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
}

// PageEnvelope 列表接口的响应外壳
type PageEnvelope struct {
	Envelope
	Pagination Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

func write(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	SuccessWithMsg(c, "success", data)
}

// SuccessWithMsg 成功响应（自定义消息）
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	write(c, Envelope{StatusCode: CodeOK, Msg: msg, Data: data})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	write(c, PageEnvelope{
		Envelope:   Envelope{StatusCode: CodeOK, Msg: "success", Data: data},
		Pagination: pagination,
	})
}

// Error 错误响应，data 仅携带 request_id
func Error(c *gin.Context, code int, msg string) {
	ErrorWithData(c, code, msg, nil)
}

// ErrorWithData 错误响应，附加结构化数据（如 retry_after、allowed）
func ErrorWithData(c *gin.Context, code int, msg string, data interface{}) {
	write(c, Envelope{StatusCode: code, Msg: msg, Data: withRequestID(c, data)})
}

// Unauthorized 401
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

// Forbidden 403
func Forbidden(c *gin.Context, msg string) {
	Error(c, CodeForbidden, msg)
}

// NewPagination 根据总数计算页数
func NewPagination(page, pageSize int, total int64) Pagination {
	p := Pagination{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		p.TotalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return p
}

// withRequestID 把请求 ID 合并进错误数据，便于顾客反馈时定位日志
func withRequestID(c *gin.Context, data interface{}) interface{} {
	id := ""
	if c != nil {
		id = c.GetString(RequestIDKey)
	}
	if id == "" {
		return data
	}
	switch v := data.(type) {
	case nil:
		return gin.H{RequestIDKey: id}
	case gin.H:
		if _, exists := v[RequestIDKey]; !exists {
			v[RequestIDKey] = id
		}
		return v
	case map[string]interface{}:
		if _, exists := v[RequestIDKey]; !exists {
			v[RequestIDKey] = id
		}
		return v
	default:
		return gin.H{RequestIDKey: id, "data": data}
	}
}
