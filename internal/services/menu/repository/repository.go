// Package repository is the storage boundary of the menu engine. Every method
// returns plain values or an *apperrors.Error (NotFound or Store).
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"juicebar-system/internal/database/models"
)

// ConfigRow is one category- or item-level configuration row joined with its
// ingredient and, when the row names a group the ingredient belongs to, with
// that group membership.
type ConfigRow struct {
	Source             string
	IngredientID       int64
	SelectionType      string
	PriceOverride      decimal.NullDecimal
	VolumePrices       []byte
	IngredientGroupID  *int64
	IsRequired         bool
	Ingredient         models.CustomIngredient
	GroupSortOrder     *int32
	GroupPriceOverride decimal.NullDecimal
}

type MenuRepository interface {
	GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)
	GetCategory(ctx context.Context, id int64) (*models.MenuCategory, error)
	ListActiveCategories(ctx context.Context) ([]models.MenuCategory, error)
	ListAvailableItems(ctx context.Context) ([]models.MenuItem, error)
	ListItemVolumes(ctx context.Context, itemID int64) ([]models.MenuItemVolume, error)
	ListCategoryVolumes(ctx context.Context, categoryID int64) ([]models.CategoryVolume, error)
	ListAdditionalItems(ctx context.Context, itemID int64) ([]models.AdditionalItem, error)
	ReplaceCategoryVolumes(ctx context.Context, categoryID int64, volumes []models.CategoryVolume) error
	ReplaceItemVolumes(ctx context.Context, itemID int64, volumes []models.MenuItemVolume) error
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	DeleteMenuItem(ctx context.Context, id int64) error
}

type IngredientRepository interface {
	ListIngredients(ctx context.Context, includeInactive bool) ([]models.CustomIngredient, error)
	GetIngredient(ctx context.Context, id int64) (*models.CustomIngredient, error)
	GetIngredientsByIDs(ctx context.Context, ids []int64) ([]models.CustomIngredient, error)
	CreateIngredient(ctx context.Context, ingredient *models.CustomIngredient) error
	UpdateIngredient(ctx context.Context, ingredient *models.CustomIngredient) error
	DeleteIngredient(ctx context.Context, id int64) error
}

type GroupRepository interface {
	ListGroups(ctx context.Context) ([]models.IngredientGroup, error)
	GetGroup(ctx context.Context, id int64) (*models.IngredientGroup, error)
	CreateGroup(ctx context.Context, group *models.IngredientGroup) error
	ReplaceGroupMembers(ctx context.Context, groupID int64, members []models.IngredientGroupItem) error
}

// ConfigRepository replaces a scope's configuration atomically: all rows of the
// scope are deleted and the new set inserted in one transaction.
type ConfigRepository interface {
	ListItemConfigRows(ctx context.Context, itemID int64) ([]ConfigRow, error)
	ListCategoryConfigRows(ctx context.Context, categoryID int64) ([]ConfigRow, error)
	ReplaceCategoryConfigs(ctx context.Context, categoryID int64, configs []models.CategoryIngredientConfig) error
	ReplaceItemConfigs(ctx context.Context, itemID int64, configs []models.MenuItemIngredientConfig) error
}

// Repositories bundles the four stores the menu handler is built from.
type Repositories struct {
	Menu        MenuRepository
	Ingredients IngredientRepository
	Groups      GroupRepository
	Configs     ConfigRepository
}
