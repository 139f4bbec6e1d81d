package transaction

const DefaultCategory = "Uncategorized"

var categories = []string{
	"Food & Dining",
	"Shopping",
	"Transportation",
	"Bills & Utilities",
	"Entertainment",
	"Health & Fitness",
	"Travel",
	"Education",
	"Personal Care",
	"Gifts & Donations",
	"Investments",
	"Salary",
	"Business",
	DefaultCategory,
}

// Categories returns the fixed category catalogue.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}
