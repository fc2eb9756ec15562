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

type AttributeStore interface {
	Create(ctx context.Context, req catalog.CreateAttributeRequest) (catalog.Attribute, error)
	GetByID(ctx context.Context, id int64) (catalog.Attribute, error)
	ListBySubcategory(ctx context.Context, subcategoryID int64) ([]catalog.Attribute, error)
	Update(ctx context.Context, id int64, req catalog.UpdateAttributeRequest) (catalog.Attribute, error)
	Delete(ctx context.Context, id int64) error
}

type AttributesHandler struct {
	repo AttributeStore
}

func NewAttributesHandler(repo AttributeStore) *AttributesHandler {
	return &AttributesHandler{repo: repo}
}

func (h *AttributesHandler) CreateAttribute(ctx *gin.Context) {
	var req catalog.CreateAttributeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	a, err := h.repo.Create(cctx, req)

	if err != nil {
		if errors.Is(err, catalog.ErrSubcategoryNotFound) {
			RespondNotFound(ctx, "Subcategory not found")
			return
		}

		RespondInternal(ctx, "Could not create attribute")
		return
	}

	ctx.JSON(http.StatusCreated, a)
}

func (h *AttributesHandler) ListBySubcategory(ctx *gin.Context) {
	subcategoryID, ok := parseIDParam(ctx, "subcategoryId")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	attributes, err := h.repo.ListBySubcategory(cctx, subcategoryID)

	if err != nil {
		RespondInternal(ctx, "Could not list attributes")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": attributes,
		"count": len(attributes),
	})
}

func (h *AttributesHandler) GetAttributeByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	a, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, catalog.ErrAttributeNotFound) {
			RespondNotFound(ctx, "Attribute not found")
			return
		}
		RespondInternal(ctx, "Could not fetch attribute")
		return
	}

	ctx.JSON(http.StatusOK, a)
}

func (h *AttributesHandler) UpdateAttribute(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req catalog.UpdateAttributeRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	a, err := h.repo.Update(cctx, id, req)

	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrAttributeNotFound):
			RespondNotFound(ctx, "Attribute not found")
		case errors.Is(err, catalog.ErrCategoryInUse):
			RespondConflict(ctx, "attribute_in_use", "Attribute values are still referenced by product variants.")
		default:
			RespondInternal(ctx, "Could not update attribute")
		}
		return
	}

	ctx.JSON(http.StatusOK, a)
}

func (h *AttributesHandler) DeleteAttribute(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if err := h.repo.Delete(cctx, id); err != nil {
		switch {
		case errors.Is(err, catalog.ErrAttributeNotFound):
			RespondNotFound(ctx, "Attribute not found")
		case errors.Is(err, catalog.ErrCategoryInUse):
			RespondConflict(ctx, "attribute_in_use", "Attribute values are still referenced by product variants.")
		default:
			RespondInternal(ctx, "Could not delete attribute")
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
