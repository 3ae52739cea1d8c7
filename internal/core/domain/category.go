package domain

// Category is a cost-center/classification dimension that budget entries are
// attributed to. Owned by the category registry; the budget core only reads it
// to validate foreign keys and denormalize display fields into audit entries.
// Uniqueness is the (Name, Group, ClassCode) tuple.
type Category struct {
	CategoryID string `json:"id_categoria"`
	Name       string `json:"categoria"`
	UF         string `json:"uf"`
	CostCenter string `json:"master"` // centro de custo
	Group      string `json:"grupo"`
	ClassCode  string `json:"cod_class"`
	CostClass  string `json:"classe_custo"`
	AuditFields
}

// CategoryFilter narrows category listings. Zero values mean "no filter".
type CategoryFilter struct {
	Name   string
	UF     string
	Group  string
	Search string // substring match over name, group and cost class
}
