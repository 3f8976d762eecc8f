package store

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"gorm.io/gorm"
)

// DefaultPerPage is the page size on the home and per-user listings.
const DefaultPerPage = 5

const (
	slugLength  = 8
	slugRetries = 3
)

// PostStore persists posts and enforces the ownership rule on every
// mutation: only the owning user may update or delete a post.
type PostStore struct {
	db      *gorm.DB
	newSlug func() string
}

func NewPostStore(gdb *gorm.DB) *PostStore {
	return &PostStore{
		db:      gdb,
		newSlug: func() string { return utils.RandString(slugLength) },
	}
}

func validatePost(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if utf8.RuneCountInString(title) > 100 {
		return &ValidationError{Field: "title", Message: "must be 100 characters or fewer"}
	}
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Message: "is required"}
	}
	return nil
}

// Create inserts a post owned by owner. CreatedAt is set by the insert
// and never changes afterwards.
func (s *PostStore) Create(title, content string, owner *models.User) (*models.Post, error) {
	if err := validatePost(title, content); err != nil {
		return nil, err
	}
	post := models.Post{
		UserID:  owner.ID,
		Title:   title,
		Content: content,
	}
	// The unique index on Slug can still reject a generated slug;
	// regenerate and retry before giving up.
	var err error
	for attempt := 0; attempt < slugRetries; attempt++ {
		post.Slug = s.newSlug()
		if err = s.db.Create(&post).Error; err == nil {
			return &post, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	return nil, err
}

// Update overwrites title and content after the ownership check.
func (s *PostStore) Update(id uint, title, content string, requester *models.User) (*models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if post.UserID != requester.ID {
		return nil, ErrForbidden
	}
	if err := validatePost(title, content); err != nil {
		return nil, err
	}
	post.Title = title
	post.Content = content
	if err := s.db.Save(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes the post after the same ownership check as Update.
func (s *PostStore) Delete(id uint, requester *models.User) error {
	var post models.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if post.UserID != requester.ID {
		return ErrForbidden
	}
	return s.db.Unscoped().Delete(&post).Error
}

func (s *PostStore) ByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostStore) BySlug(slug string) (*models.Post, error) {
	var post models.Post
	if err := s.db.Preload("User").Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ListPage returns one page of posts, newest first. Equal timestamps
// fall back to id order so paging stays stable. The second return value
// is the total page count for the pager.
func (s *PostStore) ListPage(page, perPage int) ([]models.Post, int, error) {
	return s.listPage(s.db.Model(&models.Post{}), page, perPage)
}

// ListByAuthor is ListPage filtered to a single owner.
func (s *PostStore) ListByAuthor(owner *models.User, page, perPage int) ([]models.Post, int, error) {
	return s.listPage(s.db.Model(&models.Post{}).Where("user_id = ?", owner.ID), page, perPage)
}

func (s *PostStore) listPage(query *gorm.DB, page, perPage int) ([]models.Post, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	// Finisher calls each get their own session so the shared
	// condition chain is not consumed by Count before Find runs.
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	var posts []models.Post
	err := query.Session(&gorm.Session{}).Preload("User").
		Order("created_at DESC, id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, totalPages, nil
}
