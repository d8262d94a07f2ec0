package handler

import (
	"github.com/gin-gonic/gin"

	"acta_diurna/internal/pkg"
)

// respondErr 业务错误统一出口，状态码和错误码由 pkg 的分类决定
func respondErr(c *gin.Context, err error) {
	c.JSON(pkg.HTTPStatus(err), gin.H{"msg": err.Error(), "code": pkg.ErrCode(err)})
}

func userIDFromCtx(c *gin.Context) uint64 {
	if v, ok := c.Get("user_id"); ok {
		if id, ok2 := v.(uint64); ok2 {
			return id
		}
	}
	return 0
}
