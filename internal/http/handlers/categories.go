package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beadworks/storeadmin/internal/config"
	"github.com/beadworks/storeadmin/internal/domain/catalog"
	"github.com/beadworks/storeadmin/internal/http/middlewares"
	"github.com/beadworks/storeadmin/internal/jobs"
	"github.com/gin-gonic/gin"
)

const maxImageBytes = 5 << 20 // 5 MiB per image

type CategoryStore interface {
	Create(ctx context.Context, req catalog.CreateCategoryRequest) (catalog.Category, error)
	List(ctx context.Context) ([]catalog.Category, error)
	GetByID(ctx context.Context, id int64) (catalog.Category, error)
	Update(ctx context.Context, id int64, req catalog.UpdateCategoryRequest) (catalog.Category, error)
	SetImageURL(ctx context.Context, id int64, url string) error
	Delete(ctx context.Context, id int64) error
}

// ImageStore uploads objects and maps public urls back to object keys.
type ImageStore interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (string, string, error)
	KeyFromURL(url string) string
}

// JobEnqueuer hands asynchronous cleanup work to the queue.
type JobEnqueuer interface {
	EnqueuePayload(ctx context.Context, t jobs.JobType, payload any) error
}

type CategoriesHandler struct {
	repo    CategoryStore
	images  ImageStore
	enqueue JobEnqueuer
}

func NewCategoriesHandler(repo CategoryStore, images ImageStore, enqueue JobEnqueuer) *CategoriesHandler {
	return &CategoriesHandler{repo: repo, images: images, enqueue: enqueue}
}

func (h *CategoriesHandler) CreateCategory(ctx *gin.Context) {
	var req catalog.CreateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	c, err := h.repo.Create(cctx, req)

	if err != nil {
		if errors.Is(err, catalog.ErrDuplicateSlug) {
			RespondConflict(ctx, "duplicate_slug", "A category with this name already exists.")
			return
		}

		RespondInternal(ctx, "Could not create category")
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

func (h *CategoriesHandler) ListCategories(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	categories, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list categories")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": categories,
		"count": len(categories),
	})
}

func (h *CategoriesHandler) GetCategoryByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	c, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			RespondNotFound(ctx, "Category not found")
			return
		}
		RespondInternal(ctx, "Could not fetch category")
		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (h *CategoriesHandler) UpdateCategory(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req catalog.UpdateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	c, err := h.repo.Update(cctx, id, req)

	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrCategoryNotFound):
			RespondNotFound(ctx, "Category not found")
		case errors.Is(err, catalog.ErrDuplicateSlug):
			RespondConflict(ctx, "duplicate_slug", "A category with this name already exists.")
		default:
			RespondInternal(ctx, "Could not update category")
		}
		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (h *CategoriesHandler) DeleteCategory(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			RespondNotFound(ctx, "Category not found")
			return
		}
		RespondInternal(ctx, "Could not delete category")
		return
	}

	if err := h.repo.Delete(cctx, id); err != nil {
		switch {
		case errors.Is(err, catalog.ErrCategoryNotFound):
			RespondNotFound(ctx, "Category not found")
		case errors.Is(err, catalog.ErrCategoryInUse):
			RespondConflict(ctx, "category_in_use", "Category still has subcategories or products.")
		default:
			RespondInternal(ctx, "Could not delete category")
		}
		return
	}

	h.enqueueImageCleanup(ctx, existing.ImageURL)

	ctx.Status(http.StatusNoContent)
}

// UploadImage replaces the category image. The old object is deleted by a
// background job so a slow store never blocks the request.
func (h *CategoriesHandler) UploadImage(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			RespondNotFound(ctx, "Category not found")
			return
		}
		RespondInternal(ctx, "Could not upload image")
		return
	}

	file, header, err := ctx.Request.FormFile("image")
	if err != nil {
		RespondBadRequest(ctx, "Missing image file", nil)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		RespondBadRequest(ctx, "File must be an image", gin.H{"contentType": contentType})
		return
	}
	if header.Size > maxImageBytes {
		RespondBadRequest(ctx, "Image too large", gin.H{"maxBytes": maxImageBytes})
		return
	}

	_, url, err := h.images.Upload(cctx, "categories", header.Filename, file, header.Size, contentType)
	if err != nil {
		RespondInternal(ctx, "Could not store image")
		return
	}

	if err := h.repo.SetImageURL(cctx, id, url); err != nil {
		RespondInternal(ctx, "Could not save image url")
		return
	}

	h.enqueueImageCleanup(ctx, existing.ImageURL)

	ctx.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

// DeleteImage clears the stored image url and queues the object removal.
func (h *CategoriesHandler) DeleteImage(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	existing, err := h.repo.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrCategoryNotFound) {
			RespondNotFound(ctx, "Category not found")
			return
		}
		RespondInternal(ctx, "Could not remove image")
		return
	}

	if existing.ImageURL == "" {
		RespondNotFound(ctx, "Category has no image")
		return
	}

	if err := h.repo.SetImageURL(cctx, id, ""); err != nil {
		RespondInternal(ctx, "Could not remove image")
		return
	}

	h.enqueueImageCleanup(ctx, existing.ImageURL)

	ctx.Status(http.StatusNoContent)
}

func (h *CategoriesHandler) enqueueImageCleanup(ctx *gin.Context, url string) {
	if url == "" || h.enqueue == nil || h.images == nil {
		return
	}

	key := h.images.KeyFromURL(url)
	if key == "" {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	// best effort; a leaked object is recoverable, a failed request is not
	_ = h.enqueue.EnqueuePayload(ctx.Request.Context(), jobs.JobDeleteStoredFile, jobs.DeleteStoredFilePayload{
		ObjectKey:   key,
		RequestedBy: userID,
		RequestedAt: time.Now().UTC(),
		RequestID:   requestIDFrom(ctx),
	})
}
