package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mesem-yoklama/pkg/response"
)

// BodyLimit 请求体大小上限（JSON 与花名册上传共用 server.max_body_bytes）
//
// 声明的 Content-Length 超限时直接拒绝；未声明长度的请求由 MaxBytesReader 截断，
// 处理器通过 c.Error 上报的 *http.MaxBytesError 统一转换为 413
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			tooLarge(c)
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

		c.Next()

		if c.Writer.Written() {
			return
		}
		for _, e := range c.Errors {
			var mbe *http.MaxBytesError
			if errors.As(e.Err, &mbe) {
				tooLarge(c)
				return
			}
		}
	}
}

func tooLarge(c *gin.Context) {
	response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
}
