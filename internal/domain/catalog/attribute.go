package catalog

import "time"

// Attribute is a named axis of product variation, e.g. "Color" with
// values ["Red", "Blue"]. Values are stored as their own rows so variant
// combinations can reference them by id.
type Attribute struct {
	ID            int64            `json:"id"`
	SubcategoryID int64            `json:"subcategoryId"`
	Name          string           `json:"name"`
	Values        []AttributeValue `json:"values"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type AttributeValue struct {
	ID          int64  `json:"id"`
	AttributeID int64  `json:"attributeId"`
	Value       string `json:"value"`
}

type CreateAttributeRequest struct {
	SubcategoryID int64    `json:"subcategoryId" binding:"required,min=1"`
	Name          string   `json:"name" binding:"required,min=1,max=80"`
	Values        []string `json:"values" binding:"required,min=1,max=50,dive,required,min=1,max=80"`
}

type UpdateAttributeRequest struct {
	Name   string   `json:"name" binding:"required,min=1,max=80"`
	Values []string `json:"values" binding:"required,min=1,max=50,dive,required,min=1,max=80"`
}
