package model

// ExportVersion tags the backup document format.
const ExportVersion = "1.0.0"

// ExportData is the full-state backup document.
type ExportData struct {
	Version      string        `json:"version"`
	Transactions []Transaction `json:"transactions"`
	Categories   []Category    `json:"categories"`
	ExportedAt   int64         `json:"exportedAt"`
}

// ImportResult reports how many records an import wrote.
type ImportResult struct {
	TransactionsCount int `json:"transactionsCount"`
	CategoriesCount   int `json:"categoriesCount"`
}
