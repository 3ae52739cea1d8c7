package domain

// FilterValues are the distinct value sets offered by the SPA's filter
// dropdowns. Served from a TTL cache keyed globally, invalidated on budget or
// category mutations.
type FilterValues struct {
	Years      []int          `json:"anos"`
	Statuses   []BudgetStatus `json:"status"`
	UFs        []string       `json:"ufs"`
	CostCenter []string       `json:"masters"`
	Categories []string       `json:"categorias"`
}

// CategoryFilterValues are the distinct values offered by the category screen.
type CategoryFilterValues struct {
	Categories []string `json:"categorias"`
	UFs        []string `json:"ufs"`
	Groups     []string `json:"grupos"`
}

// Totals is the aggregated dashboard headline.
type Totals struct {
	Planned      float64 `json:"total_orcado"`
	Actual       float64 `json:"total_realizado"`
	Variance     float64 `json:"total_dif"`
	ExecutionPct float64 `json:"percentual_execucao"`
}

// KPIs are the dashboard headline counters.
type KPIs struct {
	TotalCategories int `json:"total_categorias"`
	TotalEntries    int `json:"total_orcamentos"`
	PendingApproval int `json:"aguardando_aprovacao"`
	Approved        int `json:"aprovados"`
}

// AuditSummary aggregates audit volume for the logs overview screen.
type AuditSummary struct {
	Total   int            `json:"total"`
	ByTable map[string]int `json:"por_tabela"`
	ByActor map[string]int `json:"por_usuario"`
}
