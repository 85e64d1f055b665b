// Package pricing computes authoritative line totals from a menu item, the
// ingredients resolved for it and a customer's selection.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/database/models"
	"juicebar-system/internal/services/menu/dto"
)

const op = "compute line total"

var hundred = decimal.NewFromInt(100)

// PricedItem is the part of a menu item the calculator needs. Volumes are the
// volumes the storefront offers for the item, already priced.
type PricedItem struct {
	ID              int64
	Price           decimal.Decimal
	Volume          string
	DiscountPercent decimal.Decimal
	Volumes         []dto.Volume
}

// BasePrice returns the price of the chosen volume, or the item price when no
// volume is chosen or the item's own volume label is picked.
func (p PricedItem) BasePrice(volume string) (decimal.Decimal, error) {
	if volume == "" || (volume == p.Volume && len(p.Volumes) == 0) {
		return p.Price, nil
	}
	for _, v := range p.Volumes {
		if v.Volume == volume {
			return v.Price, nil
		}
	}
	if volume == p.Volume {
		return p.Price, nil
	}
	return decimal.Zero, apperrors.Validation(op, "volume %q is not offered for menu item %d", volume, p.ID)
}

// Discounted applies the item's percentage discount. Discounts of 100% or more
// price the item at zero.
func (p PricedItem) Discounted(base decimal.Decimal) decimal.Decimal {
	if !p.DiscountPercent.IsPositive() {
		return base
	}
	if p.DiscountPercent.GreaterThanOrEqual(hundred) {
		return decimal.Zero
	}
	return base.Mul(decimal.NewFromInt(1).Sub(p.DiscountPercent.Div(hundred)))
}

// ComputeLineTotal prices one order line:
//
//	unit  = discounted(base) + Σ ingredient price × qty + Σ additional price × qty
//	total = unit × quantity
//
// Any selection the item does not offer is a validation error.
func ComputeLineTotal(item PricedItem, offered []dto.OfferedIngredient, additional []dto.AdditionalItem, sel dto.Selection) (dto.Quote, error) {
	if sel.Quantity < 1 {
		return dto.Quote{}, apperrors.Validation(op, "quantity must be at least 1, got %d", sel.Quantity)
	}

	base, err := item.BasePrice(sel.Volume)
	if err != nil {
		return dto.Quote{}, err
	}
	discounted := item.Discounted(base)

	ingredientTotal, err := ingredientsTotal(offered, sel)
	if err != nil {
		return dto.Quote{}, err
	}
	additionalTotal, err := additionalTotal(item.ID, additional, sel.AdditionalItems)
	if err != nil {
		return dto.Quote{}, err
	}

	unit := discounted.Add(ingredientTotal).Add(additionalTotal)
	return dto.Quote{
		MenuItemID:      item.ID,
		Volume:          sel.Volume,
		BasePrice:       base,
		DiscountedPrice: discounted,
		IngredientTotal: ingredientTotal,
		AdditionalTotal: additionalTotal,
		UnitPrice:       unit,
		Quantity:        sel.Quantity,
		LineTotal:       unit.Mul(decimal.NewFromInt(int64(sel.Quantity))),
	}, nil
}

func ingredientsTotal(offered []dto.OfferedIngredient, sel dto.Selection) (decimal.Decimal, error) {
	byID := make(map[int64]dto.OfferedIngredient, len(offered))
	for _, o := range offered {
		byID[o.ID] = o
	}

	quantities := make(map[int64]int, len(sel.Ingredients))
	var order []int64
	for _, s := range sel.Ingredients {
		if s.Quantity < 0 {
			return decimal.Zero, apperrors.Validation(op, "ingredient %d has negative quantity", s.ID)
		}
		qty := s.Quantity
		if qty == 0 {
			qty = 1
		}
		if _, ok := byID[s.ID]; !ok {
			return decimal.Zero, apperrors.Validation(op, "ingredient %d is not offered for this item", s.ID)
		}
		if _, seen := quantities[s.ID]; !seen {
			order = append(order, s.ID)
		}
		quantities[s.ID] += qty
	}

	total := decimal.Zero
	picked := make(map[int64]int64)
	for _, id := range order {
		o := byID[id]
		qty := quantities[id]
		if o.SelectionType == models.SelectionSingle {
			key := choiceOf(o)
			if prev, ok := picked[key]; ok {
				return decimal.Zero, apperrors.Validation(op, "ingredients %d and %d are alternatives; only one may be selected", prev, id)
			}
			picked[key] = id
			if qty > 1 {
				return decimal.Zero, apperrors.Validation(op, "single-choice ingredient %d cannot be selected more than once", id)
			}
		}
		total = total.Add(o.PriceFor(sel.Volume).Mul(decimal.NewFromInt(int64(qty))))
	}

	for _, o := range offered {
		if !o.IsRequired {
			continue
		}
		if o.SelectionType == models.SelectionSingle {
			if _, ok := picked[choiceOf(o)]; !ok {
				return decimal.Zero, apperrors.Validation(op, "a choice is required for %s", describeChoice(o))
			}
			continue
		}
		if _, ok := quantities[o.ID]; !ok {
			return decimal.Zero, apperrors.Validation(op, "required ingredient %d is missing", o.ID)
		}
	}
	return total, nil
}

// choiceOf identifies the pick-one set an ingredient belongs to: its group,
// or 0 for the set of all ungrouped single-choice ingredients of the item.
func choiceOf(o dto.OfferedIngredient) int64 {
	if o.IngredientGroupID != nil {
		return *o.IngredientGroupID
	}
	return 0
}

func describeChoice(o dto.OfferedIngredient) string {
	if o.IngredientGroupID != nil {
		return fmt.Sprintf("ingredient group %d", *o.IngredientGroupID)
	}
	return "the single-choice ingredients"
}

func additionalTotal(itemID int64, available []dto.AdditionalItem, selected []dto.SelectedAdditional) (decimal.Decimal, error) {
	byID := make(map[int64]dto.AdditionalItem, len(available))
	for _, a := range available {
		byID[a.ID] = a
	}

	total := decimal.Zero
	for _, s := range selected {
		a, ok := byID[s.ID]
		if !ok || !a.IsAvailable {
			return decimal.Zero, apperrors.Validation(op, "additional item %d is not available for menu item %d", s.ID, itemID)
		}
		if s.Quantity < 0 {
			return decimal.Zero, apperrors.Validation(op, "additional item %d has negative quantity", s.ID)
		}
		qty := s.Quantity
		if qty == 0 {
			qty = 1
		}
		total = total.Add(a.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total, nil
}
