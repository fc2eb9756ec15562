package catalog

import "testing"

func TestNewProductFromCreateRequest(t *testing.T) {
	cost := int64(450)

	req := CreateProductRequest{
		SubcategoryID: 3,
		Name:          "Trail Runner X",
		BasePrice:     9900,
		Variants: []CreateVariantRequest{
			{SKU: "TRX-42", Price: 9900, CostPrice: &cost, Stock: 5, AttributeValueIDs: []int64{11, 12}},
			{SKU: "TRX-43", Price: 9900, Stock: 0},
		},
	}

	p := NewProductFromCreateRequest(req)

	if p.Slug != "trail-runner-x" {
		t.Fatalf("slug = %q", p.Slug)
	}
	if len(p.Variants) != 2 {
		t.Fatalf("variants = %d", len(p.Variants))
	}

	v := p.Variants[0]
	if v.CostPrice == nil || *v.CostPrice != cost {
		t.Fatalf("cost price = %v, want %d", v.CostPrice, cost)
	}
	if len(v.Combinations) != 2 || v.Combinations[1].AttributeValueID != 12 {
		t.Fatalf("combinations = %+v", v.Combinations)
	}

	if p.Variants[1].CostPrice != nil {
		t.Fatalf("cost price should stay unset when omitted, got %v", *p.Variants[1].CostPrice)
	}
}
