package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/beadworks/storeadmin/internal/config"
	"github.com/beadworks/storeadmin/internal/domain/catalog"
	"github.com/beadworks/storeadmin/internal/http/middlewares"
	"github.com/beadworks/storeadmin/internal/jobs"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type ProductStore interface {
	Create(ctx context.Context, req catalog.CreateProductRequest) (catalog.Product, error)
	List(ctx context.Context, filter catalog.ListProductsFilter) ([]catalog.Product, int64, error)
	GetByID(ctx context.Context, id int64) (catalog.Product, error)
	Update(ctx context.Context, id int64, req catalog.UpdateProductRequest) (catalog.Product, error)
	AddImageURL(ctx context.Context, id int64, url string) error
	Delete(ctx context.Context, id int64) (catalog.Product, error)
}

type ProductsHandler struct {
	repo    ProductStore
	images  ImageStore
	enqueue JobEnqueuer
}

func NewProductsHandler(repo ProductStore, images ImageStore, enqueue JobEnqueuer) *ProductsHandler {
	return &ProductsHandler{repo: repo, images: images, enqueue: enqueue}
}

func (h *ProductsHandler) CreateProduct(ctx *gin.Context) {
	var req catalog.CreateProductRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	p, err := h.repo.Create(cctx, req)

	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrSubcategoryNotFound):
			RespondNotFound(ctx, "Subcategory not found")
		case errors.Is(err, catalog.ErrDuplicateSlug):
			RespondConflict(ctx, "duplicate_slug", "A product with this name already exists.")
		default:
			RespondInternal(ctx, "Could not create product")
		}
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *ProductsHandler) ListProducts(ctx *gin.Context) {
	filter := catalog.ListProductsFilter{
		Limit:  parseQueryInt(ctx, "limit", defaultPageLimit),
		Offset: parseQueryInt(ctx, "offset", 0),
	}
	if filter.Limit <= 0 || filter.Limit > maxPageLimit {
		filter.Limit = defaultPageLimit
	}

	if raw := ctx.Query("subcategoryId"); raw != "" {
		id := int64(parseQueryInt(ctx, "subcategoryId", 0))
		if id > 0 {
			filter.SubcategoryID = &id
		}
	}
	if q := strings.TrimSpace(ctx.Query("q")); q != "" {
		filter.Query = &q
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	products, total, err := h.repo.List(cctx, filter)

	if err != nil {
		RespondInternal(ctx, "Could not list products")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": products,
		"meta": catalog.PageMeta{
			Total:  total,
			Limit:  filter.Limit,
			Offset: filter.Offset,
		},
	})
}

func (h *ProductsHandler) GetProductByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			RespondNotFound(ctx, "Product not found")
			return
		}
		RespondInternal(ctx, "Could not fetch product")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ProductsHandler) UpdateProduct(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req catalog.UpdateProductRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	p, err := h.repo.Update(cctx, id, req)

	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			RespondNotFound(ctx, "Product not found")
		case errors.Is(err, catalog.ErrSubcategoryNotFound):
			RespondNotFound(ctx, "Subcategory not found")
		case errors.Is(err, catalog.ErrDuplicateSlug):
			RespondConflict(ctx, "duplicate_slug", "A product with this name already exists.")
		default:
			RespondInternal(ctx, "Could not update product")
		}
		return
	}

	ctx.JSON(http.StatusOK, p)
}

// DeleteProduct removes the row and schedules deletion of its stored
// images.
func (h *ProductsHandler) DeleteProduct(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	deleted, err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			RespondNotFound(ctx, "Product not found")
			return
		}
		RespondInternal(ctx, "Could not delete product")
		return
	}

	for _, url := range deleted.ImageURLs {
		h.enqueueImageCleanup(ctx, url)
	}

	ctx.Status(http.StatusNoContent)
}

func (h *ProductsHandler) UploadImage(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if _, err := h.repo.GetByID(cctx, id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			RespondNotFound(ctx, "Product not found")
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

	_, url, err := h.images.Upload(cctx, "products", header.Filename, file, header.Size, contentType)
	if err != nil {
		RespondInternal(ctx, "Could not store image")
		return
	}

	if err := h.repo.AddImageURL(cctx, id, url); err != nil {
		RespondInternal(ctx, "Could not save image url")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

// CorrectVariantStock queues an inventory correction for one variant.
// The write runs through the worker so a batch of corrections never
// holds requests open on the database.
func (h *ProductsHandler) CorrectVariantStock(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	variantID, ok := parseIDParam(ctx, "variantId")
	if !ok {
		return
	}

	var req catalog.CorrectVariantStockRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	p, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			RespondNotFound(ctx, "Product not found")
			return
		}
		RespondInternal(ctx, "Could not queue stock correction")
		return
	}

	var found bool
	for _, v := range p.Variants {
		if v.ID == variantID {
			found = true
			break
		}
	}
	if !found {
		RespondNotFound(ctx, "Variant not found")
		return
	}

	err = h.enqueue.EnqueuePayload(ctx.Request.Context(), jobs.JobResyncProductStock, jobs.ResyncProductStockPayload{
		VariantID: variantID,
		Stock:     *req.Stock,
	})
	if err != nil {
		RespondInternal(ctx, "Could not queue stock correction")
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{"queued": true, "variantId": variantID})
}

func (h *ProductsHandler) enqueueImageCleanup(ctx *gin.Context, url string) {
	if url == "" || h.enqueue == nil || h.images == nil {
		return
	}

	key := h.images.KeyFromURL(url)
	if key == "" {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	_ = h.enqueue.EnqueuePayload(ctx.Request.Context(), jobs.JobDeleteStoredFile, jobs.DeleteStoredFilePayload{
		ObjectKey:   key,
		RequestedBy: userID,
		RequestedAt: time.Now().UTC(),
		RequestID:   requestIDFrom(ctx),
	})
}
