package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/beadworks/storeadmin/internal/config"
	"github.com/beadworks/storeadmin/internal/domain/catalog"
	"github.com/gin-gonic/gin"
)

type SubcategoryStore interface {
	Create(ctx context.Context, req catalog.CreateSubcategoryRequest) (catalog.Subcategory, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]catalog.Subcategory, error)
	GetByID(ctx context.Context, id int64) (catalog.Subcategory, error)
	Update(ctx context.Context, id int64, req catalog.UpdateSubcategoryRequest) (catalog.Subcategory, error)
	Delete(ctx context.Context, id int64) error
}

type SubcategoriesHandler struct {
	repo SubcategoryStore
}

func NewSubcategoriesHandler(repo SubcategoryStore) *SubcategoriesHandler {
	return &SubcategoriesHandler{repo: repo}
}

func (h *SubcategoriesHandler) CreateSubcategory(ctx *gin.Context) {
	var req catalog.CreateSubcategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	s, err := h.repo.Create(cctx, req)

	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrCategoryNotFound):
			RespondNotFound(ctx, "Category not found")
		case errors.Is(err, catalog.ErrDuplicateSlug):
			RespondConflict(ctx, "duplicate_slug", "A subcategory with this name already exists.")
		default:
			RespondInternal(ctx, "Could not create subcategory")
		}
		return
	}

	ctx.JSON(http.StatusCreated, s)
}

func (h *SubcategoriesHandler) ListByCategory(ctx *gin.Context) {
	categoryID, ok := parseIDParam(ctx, "categoryId")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	subcategories, err := h.repo.ListByCategory(cctx, categoryID)

	if err != nil {
		RespondInternal(ctx, "Could not list subcategories")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": subcategories,
		"count": len(subcategories),
	})
}

func (h *SubcategoriesHandler) GetSubcategoryByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	s, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, catalog.ErrSubcategoryNotFound) {
			RespondNotFound(ctx, "Subcategory not found")
			return
		}
		RespondInternal(ctx, "Could not fetch subcategory")
		return
	}

	ctx.JSON(http.StatusOK, s)
}

func (h *SubcategoriesHandler) UpdateSubcategory(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req catalog.UpdateSubcategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	s, err := h.repo.Update(cctx, id, req)

	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrSubcategoryNotFound):
			RespondNotFound(ctx, "Subcategory not found")
		case errors.Is(err, catalog.ErrCategoryNotFound):
			RespondNotFound(ctx, "Category not found")
		case errors.Is(err, catalog.ErrDuplicateSlug):
			RespondConflict(ctx, "duplicate_slug", "A subcategory with this name already exists.")
		default:
			RespondInternal(ctx, "Could not update subcategory")
		}
		return
	}

	ctx.JSON(http.StatusOK, s)
}

func (h *SubcategoriesHandler) DeleteSubcategory(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, id); err != nil {
		switch {
		case errors.Is(err, catalog.ErrSubcategoryNotFound):
			RespondNotFound(ctx, "Subcategory not found")
		case errors.Is(err, catalog.ErrCategoryInUse):
			RespondConflict(ctx, "subcategory_in_use", "Subcategory still has attributes or products.")
		default:
			RespondInternal(ctx, "Could not delete subcategory")
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
