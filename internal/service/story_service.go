package service

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"acta_diurna/internal/model"
	"acta_diurna/internal/pkg"
	"acta_diurna/internal/repository/mysql"
)

const (
	MaxAttachments = 3
	MaxMediaBytes  = 5 << 20 // 单张图 5 MiB
)

// 附件类型白名单
var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// MediaStore 附件存储。对本服务来说附件就是一个不透明句柄，
// 数量上限由存储层的约束保证。
type MediaStore interface {
	Store(img *model.StoryImage, limit int) error
	Fetch(id uint64) (*model.StoryImage, error)
}

type StoryService struct {
	repo  *mysql.StoryRepository
	users *mysql.UserRepository
	media MediaStore
	loc   *time.Location
	now   func() time.Time
}

func NewStoryService(db *gorm.DB, loc *time.Location) *StoryService {
	return &StoryService{
		repo:  &mysql.StoryRepository{DB: db},
		users: &mysql.UserRepository{DB: db},
		media: &mysql.MediaRepository{DB: db},
		loc:   loc,
		now:   time.Now,
	}
}

// StoryInput 草稿/提交共用的内容字段
type StoryInput struct {
	Title      string `json:"title"`
	Headline   string `json:"headline"`
	Body       string `json:"body"`
	IsHeadline bool   `json:"is_headline"`
}

func (s *StoryService) resolveWeek(weekID string) (string, error) {
	if weekID == "" {
		return pkg.WeekIDOf(s.now(), s.loc), nil
	}
	if _, _, err := pkg.ParseWeekID(weekID); err != nil {
		return "", err
	}
	return weekID, nil
}

// SaveDraft 保存草稿，同一 (作者, 周) 反复保存是覆盖语义
func (s *StoryService) SaveDraft(authorID uint64, weekID string, in StoryInput) (*model.Story, error) {
	weekID, err := s.resolveWeek(weekID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(authorID)
	if err != nil {
		return nil, err
	}
	story := &model.Story{
		AuthorID:   authorID,
		AuthorName: user.FullName,
		WeekID:     weekID,
		Title:      in.Title,
		Headline:   in.Headline,
		Body:       in.Body,
		IsHeadline: in.IsHeadline,
	}
	return s.repo.UpsertDraft(story)
}

// GetDraft 编辑器回显用
func (s *StoryService) GetDraft(authorID uint64, weekID string) (*model.Story, error) {
	weekID, err := s.resolveWeek(weekID)
	if err != nil {
		return nil, err
	}
	story, err := s.repo.FindByAuthorWeek(authorID, weekID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, pkg.ErrNotFound
	}
	return story, nil
}

// Submit 提交投稿：内容校验 -> 截稿检查 -> 唯一性检查，
// 有草稿原地晋升，没有就直接按已提交落库。提交后不可再改。
func (s *StoryService) Submit(authorID uint64, weekID string, in StoryInput) (*model.Story, error) {
	weekID, err := s.resolveWeek(weekID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" ||
		strings.TrimSpace(in.Headline) == "" ||
		strings.TrimSpace(in.Body) == "" {
		return nil, fmt.Errorf("%w: title, headline and body are required", pkg.ErrValidation)
	}
	open, err := pkg.IsSubmissionOpen(s.now(), weekID, s.loc)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, pkg.ErrDeadlinePassed
	}
	user, err := s.users.FindByID(authorID)
	if err != nil {
		return nil, err
	}
	story := &model.Story{
		AuthorID:   authorID,
		AuthorName: user.FullName,
		WeekID:     weekID,
		Title:      in.Title,
		Headline:   in.Headline,
		Body:       in.Body,
		IsHeadline: in.IsHeadline,
	}
	return s.repo.Submit(story, s.now())
}

// AttachMedia 只有草稿可以挂附件，数量/类型/大小逐项校验
func (s *StoryService) AttachMedia(authorID, storyID uint64, filename, contentType string, data []byte) (*model.StoryImage, error) {
	story, err := s.repo.FindByID(storyID)
	if err != nil {
		return nil, err
	}
	if story.AuthorID != authorID {
		return nil, pkg.ErrNotFound
	}
	if story.State != model.StoryDraft {
		return nil, pkg.ErrStoryLocked
	}
	if !allowedMediaTypes[contentType] {
		return nil, fmt.Errorf("%w: %s", pkg.ErrInvalidMediaType, contentType)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty attachment", pkg.ErrValidation)
	}
	if len(data) > MaxMediaBytes {
		return nil, pkg.ErrPayloadTooLarge
	}
	img := &model.StoryImage{
		StoryID:     storyID,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}
	if err := s.media.Store(img, MaxAttachments); err != nil {
		return nil, err
	}
	return img, nil
}

// FetchMedia 按句柄取回附件
func (s *StoryService) FetchMedia(id uint64) (*model.StoryImage, error) {
	return s.media.Fetch(id)
}

// ListMine 作者自己的投稿历史
func (s *StoryService) ListMine(authorID uint64) ([]model.Story, error) {
	return s.repo.ListByAuthor(authorID)
}
