// Package dto holds the read and write shapes of the menu engine: what the
// resolver offers, what admins submit, and what the cached menu contains.
package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SourceMenuItem = "menu_item"
	SourceCategory = "category"
)

// OfferedIngredient is one customization option for a menu item after
// precedence resolution.
type OfferedIngredient struct {
	ID                 int64                      `json:"id"`
	Name               string                     `json:"name"`
	Description        string                     `json:"description,omitempty"`
	Image              string                     `json:"image,omitempty"`
	IngredientCategory string                     `json:"ingredient_category"`
	BasePrice          decimal.Decimal            `json:"base_price"`
	Price              decimal.Decimal            `json:"price"`
	VolumePrices       map[string]decimal.Decimal `json:"volume_prices,omitempty"`
	SelectionType      string                     `json:"selection_type"`
	IsRequired         bool                       `json:"is_required"`
	IngredientGroupID  *int64                     `json:"ingredient_group_id,omitempty"`
	SortOrder          int32                      `json:"sort_order"`
	IsAvailable        bool                       `json:"is_available"`
	Source             string                     `json:"source"`
}

// PriceFor returns the volume-specific price when one is configured for the
// label, otherwise the effective scalar price.
func (o OfferedIngredient) PriceFor(volume string) decimal.Decimal {
	if volume != "" {
		if p, ok := o.VolumePrices[volume]; ok {
			return p
		}
	}
	return o.Price
}

type ResolveOptions struct {
	IncludeInactive bool
}

// ConfigEntry is one row of an admin configuration screen. An entry with only
// IngredientGroupID applies the same settings to every member of that group.
type ConfigEntry struct {
	IngredientID      *int64                     `json:"ingredient_id,omitempty"`
	IngredientGroupID *int64                     `json:"ingredient_group_id,omitempty"`
	SelectionType     string                     `json:"selection_type"`
	PriceOverride     decimal.NullDecimal        `json:"price_override"`
	VolumePrices      map[string]decimal.Decimal `json:"volume_prices,omitempty"`
	IsRequired        bool                       `json:"is_required"`
}

type Volume struct {
	ID        int64           `json:"id,omitempty"`
	Volume    string          `json:"volume"`
	Price     decimal.Decimal `json:"price"`
	IsDefault bool            `json:"is_default"`
	SortOrder int32           `json:"sort_order"`
}

type CategoryVolume struct {
	Volume    string `json:"volume" binding:"required"`
	IsDefault bool   `json:"is_default"`
	SortOrder int32  `json:"sort_order"`
}

type AdditionalItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
	SortOrder   int32           `json:"sort_order"`
}

type ModalData struct {
	Ingredients     []OfferedIngredient `json:"ingredients"`
	Volumes         []Volume            `json:"volumes"`
	AdditionalItems []AdditionalItem    `json:"additionalItems"`
}

// MenuSnapshot is the immutable public menu held by the menu cache.
type MenuSnapshot struct {
	Version     int64          `json:"version"`
	GeneratedAt time.Time      `json:"generated_at"`
	Categories  []MenuCategory `json:"categories"`
}

type MenuCategory struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	SortOrder int32      `json:"sort_order"`
	Items     []MenuItem `json:"items"`
}

type MenuItem struct {
	ID              int64               `json:"id"`
	CategoryID      int64               `json:"category_id"`
	Name            string              `json:"name"`
	Description     string              `json:"description,omitempty"`
	Image           string              `json:"image,omitempty"`
	Price           decimal.Decimal     `json:"price"`
	Volume          string              `json:"volume,omitempty"`
	DiscountPercent decimal.Decimal     `json:"discount_percent"`
	SortOrder       int32               `json:"sort_order"`
	Volumes         []Volume            `json:"volumes"`
	Ingredients     []OfferedIngredient `json:"ingredients"`
}

// Selection is what the customer picked for one line of an order.
type Selection struct {
	Volume          string               `json:"volume"`
	Quantity        int                  `json:"quantity"`
	Ingredients     []SelectedIngredient `json:"ingredients"`
	AdditionalItems []SelectedAdditional `json:"additional_items"`
}

type SelectedIngredient struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type SelectedAdditional struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type Quote struct {
	MenuItemID      int64           `json:"menu_item_id"`
	Volume          string          `json:"volume,omitempty"`
	BasePrice       decimal.Decimal `json:"base_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	IngredientTotal decimal.Decimal `json:"ingredient_total"`
	AdditionalTotal decimal.Decimal `json:"additional_total"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        int             `json:"quantity"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

type IngredientInput struct {
	Name               string          `json:"name" binding:"required"`
	Description        *string         `json:"description,omitempty"`
	Price              decimal.Decimal `json:"price"`
	Image              *string         `json:"image,omitempty"`
	IngredientCategory string          `json:"ingredient_category"`
	IsAvailable        *bool           `json:"is_available,omitempty"`
	SortOrder          int32           `json:"sort_order"`
}

type Ingredient struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	Price              decimal.Decimal `json:"price"`
	Image              string          `json:"image,omitempty"`
	IngredientCategory string          `json:"ingredient_category"`
	IsAvailable        bool            `json:"is_available"`
	SortOrder          int32           `json:"sort_order"`
}

type GroupInput struct {
	Name                 string  `json:"name" binding:"required"`
	SortOrder            int32   `json:"sort_order"`
	DefaultSelectionType *string `json:"default_selection_type,omitempty"`
	IsRequired           bool    `json:"is_required"`
}

type GroupMember struct {
	IngredientID  int64               `json:"ingredient_id"`
	SortOrder     int32               `json:"sort_order"`
	PriceOverride decimal.NullDecimal `json:"price_override"`
}

type Group struct {
	ID                   int64         `json:"id"`
	Name                 string        `json:"name"`
	SortOrder            int32         `json:"sort_order"`
	DefaultSelectionType string        `json:"default_selection_type,omitempty"`
	IsRequired           bool          `json:"is_required"`
	Members              []GroupMember `json:"members"`
}

// MenuItemUpdate carries the editable scalar fields of a menu item; nil fields
// are left untouched.
type MenuItemUpdate struct {
	CategoryID      *int64           `json:"category_id,omitempty"`
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	Volume          *string          `json:"volume,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	IsAvailable     *bool            `json:"is_available,omitempty"`
	SortOrder       *int32           `json:"sort_order,omitempty"`
}
