package middleware

import (
	"github.com/gin-gonic/gin"

	apitypes "github.com/weisyn/ace/internal/api/types"
)

const problemCodeKey = "problem_code"

// ErrorHandler 把处理器挂在 gin.Context 上的错误渲染为 Problem Details
//
// 非 ProblemDetails 错误一律按 INTERNAL 输出，详情不外泄。
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		problem, ok := apitypes.IsProblemDetails(err)
		if !ok {
			problem = apitypes.NewProblemDetails(apitypes.CodeInternal, "internal error", c.Request.URL.Path, GetRequestID(c))
		}
		c.Set(problemCodeKey, problem.Code)
		problem.WriteJSON(c.Writer)
	}
}

// Abort 以原因码终止请求
func Abort(c *gin.Context, code, detail string) {
	problem := apitypes.NewProblemDetails(code, detail, c.Request.URL.Path, GetRequestID(c))
	c.Set(problemCodeKey, problem.Code)
	c.Header("Content-Type", apitypes.ContentType)
	c.AbortWithStatusJSON(problem.Status, problem)
}
