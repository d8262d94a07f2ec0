package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"acta_diurna/internal/service"
)

type InvitationHandler struct {
	svc *service.InvitationService
}

func NewInvitationHandler(svc *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{svc: svc}
}

type sendInvitationReq struct {
	Contact string `json:"contact" binding:"required,email"`
	Message string `json:"message" binding:"max=500"`
}

// Send 发出供稿邀请
func (h *InvitationHandler) Send(c *gin.Context) {
	var req sendInvitationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	inv, err := h.svc.Send(userIDFromCtx(c), req.Contact, req.Message)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitation": inv})
}

// List 自己收到和发出的邀请
func (h *InvitationHandler) List(c *gin.Context) {
	uid := userIDFromCtx(c)
	incoming, err := h.svc.ListIncoming(uid)
	if err != nil {
		respondErr(c, err)
		return
	}
	outgoing, err := h.svc.ListOutgoing(uid)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"incoming": incoming, "outgoing": outgoing})
}

// Accept 接受邀请，成功即双方互为供稿人
func (h *InvitationHandler) Accept(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid invitation id"})
		return
	}
	if err := h.svc.Accept(id, userIDFromCtx(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// Decline 拒绝邀请
func (h *InvitationHandler) Decline(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid invitation id"})
		return
	}
	if err := h.svc.Decline(id, userIDFromCtx(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// Cancel 发起人撤回邀请
func (h *InvitationHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid invitation id"})
		return
	}
	if err := h.svc.Cancel(id, userIDFromCtx(c)); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
