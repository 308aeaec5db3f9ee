package dto

type ProductFilters struct {
	TenantID string
	// QuantityBelow keeps products with quantity strictly below the value. Zero disables it.
	QuantityBelow int
	SearchQuery   string // matched against name and batch
}
