package catalog

import "time"

type Product struct {
	ID            int64     `json:"id"`
	SubcategoryID int64     `json:"subcategoryId"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description,omitempty"`
	BasePrice     int64     `json:"basePrice"` // minor currency units
	ImageURLs     []string  `json:"imageUrls"`
	Variants      []Variant `json:"variants"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Variant is a sellable configuration of a product. Its combinations pin
// one attribute value per attribute axis.
type Variant struct {
	ID           int64                `json:"id"`
	ProductID    int64                `json:"productId"`
	SKU          string               `json:"sku"`
	Price        int64                `json:"price"`
	CostPrice    *int64               `json:"costPrice,omitempty"`
	Stock        int                  `json:"stock"`
	Combinations []VariantCombination `json:"combinations"`
}

type VariantCombination struct {
	ID               int64 `json:"id"`
	VariantID        int64 `json:"variantId"`
	AttributeValueID int64 `json:"attributeValueId"`
}

// with pointers if optional, it will be nil
type ListProductsFilter struct {
	SubcategoryID *int64
	Query         *string
	Limit         int
	Offset        int
}

type CreateProductRequest struct {
	SubcategoryID int64                  `json:"subcategoryId" binding:"required,min=1"`
	Name          string                 `json:"name" binding:"required,min=2,max=200"`
	Description   string                 `json:"description" binding:"omitempty,max=5000"`
	BasePrice     int64                  `json:"basePrice" binding:"required,min=0"`
	Variants      []CreateVariantRequest `json:"variants" binding:"required,min=1,max=100,dive"`
}

type CreateVariantRequest struct {
	SKU               string  `json:"sku" binding:"required,min=1,max=64"`
	Price             int64   `json:"price" binding:"required,min=0"`
	CostPrice         *int64  `json:"costPrice" binding:"omitempty,min=0"`
	Stock             int     `json:"stock" binding:"min=0"`
	AttributeValueIDs []int64 `json:"attributeValueIds" binding:"omitempty,max=20,dive,min=1"`
}

// CorrectVariantStockRequest sets a variant's stock to a counted value.
type CorrectVariantStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0"`
}

// a full update payload, variants are replaced wholesale
type UpdateProductRequest struct {
	SubcategoryID int64                  `json:"subcategoryId" binding:"required,min=1"`
	Name          string                 `json:"name" binding:"required,min=2,max=200"`
	Description   string                 `json:"description" binding:"omitempty,max=5000"`
	BasePrice     int64                  `json:"basePrice" binding:"required,min=0"`
	Variants      []CreateVariantRequest `json:"variants" binding:"required,min=1,max=100,dive"`
}

func NewProductFromCreateRequest(req CreateProductRequest) Product {
	now := time.Now()

	p := Product{
		SubcategoryID: req.SubcategoryID,
		Name:          req.Name,
		Slug:          Slugify(req.Name),
		Description:   req.Description,
		BasePrice:     req.BasePrice,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, v := range req.Variants {
		variant := Variant{
			SKU:       v.SKU,
			Price:     v.Price,
			CostPrice: v.CostPrice,
			Stock:     v.Stock,
		}
		for _, id := range v.AttributeValueIDs {
			variant.Combinations = append(variant.Combinations, VariantCombination{AttributeValueID: id})
		}
		p.Variants = append(p.Variants, variant)
	}

	return p
}
