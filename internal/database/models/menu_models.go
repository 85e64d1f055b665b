package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	SelectionSingle   = "single"
	SelectionMultiple = "multiple"

	DefaultIngredientCategory = "other"
)

func ValidSelectionType(s string) bool {
	return s == SelectionSingle || s == SelectionMultiple
}

type CustomIngredient struct {
	ID                 int64           `gorm:"primaryKey;autoIncrement"`
	Name               string          `gorm:"type:varchar(128);not null"`
	Description        *string         `gorm:"type:text"`
	Price              decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Image              *string         `gorm:"type:varchar(256)"`
	IngredientCategory string          `gorm:"type:varchar(64);not null;default:'other'"`
	IsAvailable        Availability    `gorm:"not null"`
	SortOrder          int32           `gorm:"not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type IngredientGroup struct {
	ID                   int64   `gorm:"primaryKey;autoIncrement"`
	Name                 string  `gorm:"type:varchar(128);not null"`
	SortOrder            int32   `gorm:"not null;default:0"`
	DefaultSelectionType *string `gorm:"type:varchar(16)"`
	IsRequired           bool    `gorm:"not null;default:false"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Items []IngredientGroupItem `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

type IngredientGroupItem struct {
	ID            int64               `gorm:"primaryKey;autoIncrement"`
	GroupID       int64               `gorm:"not null;uniqueIndex:idx_group_ingredient"`
	IngredientID  int64               `gorm:"not null;uniqueIndex:idx_group_ingredient"`
	SortOrder     int32               `gorm:"not null;default:0"`
	PriceOverride decimal.NullDecimal `gorm:"type:numeric(10,2)"`

	Ingredient *CustomIngredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

type CategoryIngredientConfig struct {
	ID                int64               `gorm:"primaryKey;autoIncrement"`
	CategoryID        int64               `gorm:"not null;uniqueIndex:idx_category_ingredient"`
	IngredientID      int64               `gorm:"not null;uniqueIndex:idx_category_ingredient"`
	SelectionType     string              `gorm:"type:varchar(16);not null;default:'multiple'"`
	PriceOverride     decimal.NullDecimal `gorm:"type:numeric(10,2)"`
	VolumePrices      datatypes.JSON      `gorm:"type:jsonb"`
	IngredientGroupID *int64
	IsRequired        bool `gorm:"not null;default:false"`
	CreatedAt         time.Time

	Ingredient *CustomIngredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

type MenuItemIngredientConfig struct {
	ID                int64               `gorm:"primaryKey;autoIncrement"`
	MenuItemID        int64               `gorm:"not null;uniqueIndex:idx_item_ingredient"`
	IngredientID      int64               `gorm:"not null;uniqueIndex:idx_item_ingredient"`
	SelectionType     string              `gorm:"type:varchar(16);not null;default:'multiple'"`
	PriceOverride     decimal.NullDecimal `gorm:"type:numeric(10,2)"`
	VolumePrices      datatypes.JSON      `gorm:"type:jsonb"`
	IngredientGroupID *int64
	IsRequired        bool `gorm:"not null;default:false"`
	CreatedAt         time.Time

	Ingredient *CustomIngredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

type MenuCategory struct {
	ID        int64        `gorm:"primaryKey;autoIncrement"`
	Name      string       `gorm:"type:varchar(128);not null"`
	IsActive  Availability `gorm:"not null"`
	SortOrder int32        `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Volumes           []CategoryVolume           `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	IngredientConfigs []CategoryIngredientConfig `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Items             []MenuItem                 `gorm:"foreignKey:CategoryID"`
}

type CategoryVolume struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	CategoryID int64  `gorm:"not null;index"`
	Volume     string `gorm:"type:varchar(32);not null"`
	IsDefault  bool   `gorm:"not null;default:false"`
	SortOrder  int32  `gorm:"not null;default:0"`
}

type MenuItem struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	CategoryID      int64           `gorm:"not null;index"`
	Name            string          `gorm:"type:varchar(128);not null"`
	Description     *string         `gorm:"type:text"`
	Image           *string         `gorm:"type:varchar(256)"`
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Volume          *string         `gorm:"type:varchar(32)"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	IsAvailable     Availability    `gorm:"not null"`
	SortOrder       int32           `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Volumes           []MenuItemVolume           `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	AdditionalItems   []AdditionalItem           `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	IngredientConfigs []MenuItemIngredientConfig `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
}

type MenuItemVolume struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	MenuItemID int64           `gorm:"not null;index"`
	Volume     string          `gorm:"type:varchar(32);not null"`
	Price      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	IsDefault  bool            `gorm:"not null;default:false"`
	SortOrder  int32           `gorm:"not null;default:0"`
}

type AdditionalItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	MenuItemID  int64           `gorm:"not null;index"`
	Name        string          `gorm:"type:varchar(128);not null"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	IsAvailable Availability    `gorm:"not null"`
	SortOrder   int32           `gorm:"not null;default:0"`
}
