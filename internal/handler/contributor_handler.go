package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"acta_diurna/internal/service"
)

type ContributorHandler struct {
	svc *service.ContributorService
}

func NewContributorHandler(svc *service.ContributorService) *ContributorHandler {
	return &ContributorHandler{svc: svc}
}

// List 当前用户的供稿人列表
func (h *ContributorHandler) List(c *gin.Context) {
	views, err := h.svc.List(userIDFromCtx(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contributors": views})
}

// Remove 移除供稿人，双向一起断
func (h *ContributorHandler) Remove(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid contributor id"})
		return
	}
	if err := h.svc.Remove(userIDFromCtx(c), id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
