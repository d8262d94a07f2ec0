package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"acta_diurna/internal/service"
)

type DigestHandler struct {
	svc      *service.DigestService
	delivery *service.DeliveryService
}

func NewDigestHandler(svc *service.DigestService, delivery *service.DeliveryService) *DigestHandler {
	return &DigestHandler{svc: svc, delivery: delivery}
}

// Current 当前周的周报，没有就现场生成
func (h *DigestHandler) Current(c *gin.Context) {
	week := h.svc.CurrentWeekID()
	d, err := h.svc.GetOrGenerate(c.Request.Context(), userIDFromCtx(c), week)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"digest": d})
}

// ByWeek 指定周的周报
func (h *DigestHandler) ByWeek(c *gin.Context) {
	d, err := h.svc.GetOrGenerate(c.Request.Context(), userIDFromCtx(c), c.Param("week"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"digest": d})
}

// Regenerate 强制重算某周的周报
func (h *DigestHandler) Regenerate(c *gin.Context) {
	d, err := h.svc.Regenerate(c.Request.Context(), userIDFromCtx(c), c.Param("week"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"digest": d})
}

// Archive 历史周报概要列表
func (h *DigestHandler) Archive(c *gin.Context) {
	list, err := h.svc.Archive(userIDFromCtx(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"archive": list})
}

// Deliver 手动触发某周发刊（运维入口）
func (h *DigestHandler) Deliver(c *gin.Context) {
	week := c.Param("week")
	sent, failed := h.delivery.DeliverWeek(c.Request.Context(), week)
	c.JSON(http.StatusOK, gin.H{"sent": sent, "failed": failed})
}
