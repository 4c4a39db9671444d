package cmd

import "taskdeck/cmd/interfaces"

// Standard command categories for organizing help display
const (
	CategoryNavigation = interfaces.CategoryNavigation
	CategoryIssues     = interfaces.CategoryIssues
	CategoryView       = interfaces.CategoryView
	CategorySystem     = interfaces.CategorySystem
	CategorySpecial    = interfaces.CategorySpecial
)

// CategoryOrder defines the display order for help screens
var CategoryOrder = []Category{
	CategoryNavigation,
	CategoryIssues,
	CategoryView,
	CategorySystem,
}

// GetCategoryPriority returns the display priority for a category (lower = higher priority)
func GetCategoryPriority(category Category) int {
	for i, cat := range CategoryOrder {
		if cat == category {
			return i
		}
	}
	return len(CategoryOrder) // Unknown categories go to the end
}

// IsHiddenCategory returns true if the category should be hidden from main help
func IsHiddenCategory(category Category) bool {
	return category == CategorySpecial
}
