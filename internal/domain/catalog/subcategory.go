package catalog

import "time"

type Subcategory struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"categoryId"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateSubcategoryRequest struct {
	CategoryID  int64  `json:"categoryId" binding:"required,min=1"`
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

type UpdateSubcategoryRequest struct {
	CategoryID  int64  `json:"categoryId" binding:"required,min=1"`
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

func NewSubcategoryFromCreateRequest(req CreateSubcategoryRequest) Subcategory {
	now := time.Now()

	return Subcategory{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Slug:        Slugify(req.Name),
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
