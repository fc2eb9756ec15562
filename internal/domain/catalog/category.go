package catalog

import (
	"errors"
	"time"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSubcategoryNotFound = errors.New("subcategory not found")
	ErrAttributeNotFound   = errors.New("attribute not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrDuplicateSlug       = errors.New("slug already in use")
	ErrCategoryInUse       = errors.New("category still referenced by subcategories or products")
)

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

func NewCategoryFromCreateRequest(req CreateCategoryRequest) Category {
	now := time.Now()

	return Category{
		Name:        req.Name,
		Slug:        Slugify(req.Name),
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
