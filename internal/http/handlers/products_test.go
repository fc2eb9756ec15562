package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beadworks/storeadmin/internal/domain/catalog"
	"github.com/beadworks/storeadmin/internal/http/handlers"
	"github.com/beadworks/storeadmin/internal/jobs"
	"github.com/gin-gonic/gin"
)

type fakeProductsRepo struct {
	createFn   func(ctx context.Context, req catalog.CreateProductRequest) (catalog.Product, error)
	listFn     func(ctx context.Context, filter catalog.ListProductsFilter) ([]catalog.Product, int64, error)
	getFn      func(ctx context.Context, id int64) (catalog.Product, error)
	updateFn   func(ctx context.Context, id int64, req catalog.UpdateProductRequest) (catalog.Product, error)
	addImageFn func(ctx context.Context, id int64, url string) error
	deleteFn   func(ctx context.Context, id int64) (catalog.Product, error)
}

func (f *fakeProductsRepo) Create(ctx context.Context, req catalog.CreateProductRequest) (catalog.Product, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return catalog.Product{}, nil
}

func (f *fakeProductsRepo) List(ctx context.Context, filter catalog.ListProductsFilter) ([]catalog.Product, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (f *fakeProductsRepo) GetByID(ctx context.Context, id int64) (catalog.Product, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return catalog.Product{}, nil
}

func (f *fakeProductsRepo) Update(ctx context.Context, id int64, req catalog.UpdateProductRequest) (catalog.Product, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return catalog.Product{}, nil
}

func (f *fakeProductsRepo) AddImageURL(ctx context.Context, id int64, url string) error {
	if f.addImageFn != nil {
		return f.addImageFn(ctx, id, url)
	}
	return nil
}

func (f *fakeProductsRepo) Delete(ctx context.Context, id int64) (catalog.Product, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return catalog.Product{}, nil
}

func newProductsRouter(repo *fakeProductsRepo, enqueue *fakeEnqueuer) *gin.Engine {
	h := handlers.NewProductsHandler(repo, &fakeImageStore{}, enqueue)

	r := gin.New()
	r.POST("/products", h.CreateProduct)
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProductByID)
	r.PUT("/products/:id", h.UpdateProduct)
	r.DELETE("/products/:id", h.DeleteProduct)
	r.POST("/products/:id/images", h.UploadImage)
	r.POST("/products/:id/variants/:variantId/stock", h.CorrectVariantStock)
	return r
}

func TestCorrectVariantStockEnqueuesResync(t *testing.T) {
	repo := &fakeProductsRepo{
		getFn: func(ctx context.Context, id int64) (catalog.Product, error) {
			return catalog.Product{
				ID:       id,
				Variants: []catalog.Variant{{ID: 31, ProductID: id, SKU: "TRX-42"}},
			}, nil
		},
	}
	enqueue := &fakeEnqueuer{}
	r := newProductsRouter(repo, enqueue)

	w := postJSON(r, "/products/9/variants/31/stock", `{"stock":12}`)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(enqueue.enqueued) != 1 || enqueue.enqueued[0] != jobs.JobResyncProductStock {
		t.Fatalf("enqueued = %v", enqueue.enqueued)
	}
	p, ok := enqueue.payloads[0].(jobs.ResyncProductStockPayload)
	if !ok || p.VariantID != 31 || p.Stock != 12 {
		t.Fatalf("payload = %+v", enqueue.payloads[0])
	}
}

func TestCorrectVariantStockUnknownVariantIs404(t *testing.T) {
	repo := &fakeProductsRepo{
		getFn: func(ctx context.Context, id int64) (catalog.Product, error) {
			return catalog.Product{ID: id, Variants: []catalog.Variant{{ID: 31}}}, nil
		},
	}
	enqueue := &fakeEnqueuer{}
	r := newProductsRouter(repo, enqueue)

	w := postJSON(r, "/products/9/variants/99/stock", `{"stock":12}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(enqueue.enqueued) != 0 {
		t.Fatalf("nothing should be enqueued, got %v", enqueue.enqueued)
	}
}

func TestCorrectVariantStockRejectsNegative(t *testing.T) {
	r := newProductsRouter(&fakeProductsRepo{}, &fakeEnqueuer{})

	w := postJSON(r, "/products/9/variants/31/stock", `{"stock":-3}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestDeleteProductEnqueuesCleanupPerImage(t *testing.T) {
	repo := &fakeProductsRepo{
		deleteFn: func(ctx context.Context, id int64) (catalog.Product, error) {
			return catalog.Product{
				ID: id,
				ImageURLs: []string{
					"https://cdn.test/products/1-a.jpg",
					"https://cdn.test/products/2-b.jpg",
				},
			}, nil
		},
	}
	enqueue := &fakeEnqueuer{}
	r := newProductsRouter(repo, enqueue)

	req := httptest.NewRequest(http.MethodDelete, "/products/4", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(enqueue.enqueued) != 2 {
		t.Fatalf("enqueued = %v, want two cleanup jobs", enqueue.enqueued)
	}
}
