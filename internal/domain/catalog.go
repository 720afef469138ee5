package domain

// CatalogEntry is a read-only snapshot of one commerce catalog product.
type CatalogEntry struct {
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Categories []string          `json:"categories,omitempty"`
	InStock    bool              `json:"inStock"`
	Link       string            `json:"link"`
}
