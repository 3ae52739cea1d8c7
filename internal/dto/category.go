package dto

import (
	"time"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

// CreateCategoryRequest creates one cost-center category.
type CreateCategoryRequest struct {
	Name       string `json:"categoria" binding:"required"`
	UF         string `json:"uf"`
	CostCenter string `json:"master"`
	Group      string `json:"grupo"`
	ClassCode  string `json:"cod_class"`
	CostClass  string `json:"classe_custo"`
}

// UpdateCategoryRequest applies only the supplied fields.
type UpdateCategoryRequest struct {
	Name       *string `json:"categoria"`
	UF         *string `json:"uf"`
	CostCenter *string `json:"master"`
	Group      *string `json:"grupo"`
	ClassCode  *string `json:"cod_class"`
	CostClass  *string `json:"classe_custo"`
}

// CategoryResponse is the wire shape of one category.
type CategoryResponse struct {
	CategoryID string    `json:"id_categoria"`
	Name       string    `json:"categoria"`
	UF         string    `json:"uf"`
	CostCenter string    `json:"master"`
	Group      string    `json:"grupo"`
	ClassCode  string    `json:"cod_class"`
	CostClass  string    `json:"classe_custo"`
	CreatedAt  time.Time `json:"criado_em"`
}

// ToCategoryResponse maps a domain category to its wire shape.
func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID: c.CategoryID,
		Name:       c.Name,
		UF:         c.UF,
		CostCenter: c.CostCenter,
		Group:      c.Group,
		ClassCode:  c.ClassCode,
		CostClass:  c.CostClass,
		CreatedAt:  c.CreatedAt,
	}
}

// ToCategoryResponses maps a slice of domain categories.
func ToCategoryResponses(cats []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(cats))
	for i := range cats {
		out[i] = ToCategoryResponse(&cats[i])
	}
	return out
}

// ImportResult reports an Excel import of categories: per-row errors never
// abort the import.
type ImportResult struct {
	Message  string   `json:"message"`
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// HasErrors reports whether the import was only partially successful.
func (r ImportResult) HasErrors() bool { return len(r.Errors) > 0 }
