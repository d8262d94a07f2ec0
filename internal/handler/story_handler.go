package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"acta_diurna/internal/service"
)

type StoryHandler struct {
	svc *service.StoryService
}

func NewStoryHandler(svc *service.StoryService) *StoryHandler {
	return &StoryHandler{svc: svc}
}

type storyReq struct {
	WeekID     string `json:"week_id"`
	Title      string `json:"title"`
	Headline   string `json:"headline"`
	Body       string `json:"body"`
	IsHeadline bool   `json:"is_headline"`
}

func (r *storyReq) input() service.StoryInput {
	return service.StoryInput{
		Title:      r.Title,
		Headline:   r.Headline,
		Body:       r.Body,
		IsHeadline: r.IsHeadline,
	}
}

// SaveDraft 保存草稿，同一周重复保存是覆盖
func (h *StoryHandler) SaveDraft(c *gin.Context) {
	var req storyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	story, err := h.svc.SaveDraft(userIDFromCtx(c), req.WeekID, req.input())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story})
}

// GetDraft 取某周自己的稿子，week_id 不传默认当前周
func (h *StoryHandler) GetDraft(c *gin.Context) {
	story, err := h.svc.GetDraft(userIDFromCtx(c), c.Query("week_id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story})
}

// Submit 提交投稿，过了截稿或已提交会被拒
func (h *StoryHandler) Submit(c *gin.Context) {
	var req storyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	story, err := h.svc.Submit(userIDFromCtx(c), req.WeekID, req.input())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"story": story})
}

// AttachMedia 给草稿挂图片附件（multipart 上传）
func (h *StoryHandler) AttachMedia(c *gin.Context) {
	storyID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid story id"})
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "file required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "cannot read file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, service.MaxMediaBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "cannot read file"})
		return
	}

	img, err := h.svc.AttachMedia(userIDFromCtx(c), storyID, fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_id": img.ID, "size": img.Size})
}

// FetchMedia 下载附件原图
func (h *StoryHandler) FetchMedia(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid image id"})
		return
	}
	img, err := h.svc.FetchMedia(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

// ListMine 自己的投稿历史
func (h *StoryHandler) ListMine(c *gin.Context) {
	list, err := h.svc.ListMine(userIDFromCtx(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": list})
}
