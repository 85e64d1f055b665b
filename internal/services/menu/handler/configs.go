package handler

import (
	"context"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/database/models"
	"juicebar-system/internal/services/menu/dto"
	"juicebar-system/internal/services/menu/repository"
)

const (
	scopeCategory = "category"
	scopeItem     = "menu_item"
)

func (h *MenuHandler) GetCategoryConfig(ctx context.Context, categoryID int64) ([]dto.ConfigEntry, error) {
	if _, err := h.menu.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	rows, err := h.configs.ListCategoryConfigRows(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return h.rowsToEntries(rows), nil
}

func (h *MenuHandler) GetItemConfig(ctx context.Context, itemID int64) ([]dto.ConfigEntry, error) {
	if _, err := h.menu.GetMenuItem(ctx, itemID); err != nil {
		return nil, err
	}
	rows, err := h.configs.ListItemConfigRows(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return h.rowsToEntries(rows), nil
}

func (h *MenuHandler) rowsToEntries(rows []repository.ConfigRow) []dto.ConfigEntry {
	entries := make([]dto.ConfigEntry, len(rows))
	for i, r := range rows {
		id := r.IngredientID
		entries[i] = dto.ConfigEntry{
			IngredientID:      &id,
			IngredientGroupID: r.IngredientGroupID,
			SelectionType:     r.SelectionType,
			PriceOverride:     r.PriceOverride,
			VolumePrices:      h.parseVolumePrices(r.VolumePrices, r.IngredientID),
			IsRequired:        r.IsRequired,
		}
	}
	return entries
}

// ReplaceCategoryConfig swaps the whole ingredient configuration of a category
// and returns the accepted, expanded set.
func (h *MenuHandler) ReplaceCategoryConfig(ctx context.Context, categoryID int64, entries []dto.ConfigEntry) ([]dto.ConfigEntry, error) {
	ctx = context.WithoutCancel(ctx)
	const op = "replace category ingredient configs"

	if _, err := h.menu.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	accepted, err := h.normalizeEntries(ctx, op, entries)
	if err != nil {
		return nil, err
	}

	rows := make([]models.CategoryIngredientConfig, len(accepted))
	for i, e := range accepted {
		prices, err := encodeVolumePrices(e.VolumePrices)
		if err != nil {
			return nil, apperrors.Validation(op, "volume_prices for ingredient %d: %v", *e.IngredientID, err)
		}
		rows[i] = models.CategoryIngredientConfig{
			CategoryID:        categoryID,
			IngredientID:      *e.IngredientID,
			SelectionType:     e.SelectionType,
			PriceOverride:     e.PriceOverride,
			VolumePrices:      prices,
			IngredientGroupID: e.IngredientGroupID,
			IsRequired:        e.IsRequired,
		}
	}

	err = h.configs.ReplaceCategoryConfigs(ctx, categoryID, rows)
	recordReplacement(scopeCategory, err)
	if err != nil {
		return nil, err
	}

	h.InvalidateMenuCaches(ctx, op)
	h.log.WithField("category_id", categoryID).WithField("rows", len(rows)).Info("category ingredient configs replaced")
	return accepted, nil
}

// ReplaceItemConfig swaps the item-level ingredient configuration. An empty
// set means the item inherits its category's configuration unchanged.
func (h *MenuHandler) ReplaceItemConfig(ctx context.Context, itemID int64, entries []dto.ConfigEntry) ([]dto.ConfigEntry, error) {
	ctx = context.WithoutCancel(ctx)
	const op = "replace item ingredient configs"

	if _, err := h.menu.GetMenuItem(ctx, itemID); err != nil {
		return nil, err
	}
	accepted, err := h.normalizeEntries(ctx, op, entries)
	if err != nil {
		return nil, err
	}

	rows := make([]models.MenuItemIngredientConfig, len(accepted))
	for i, e := range accepted {
		prices, err := encodeVolumePrices(e.VolumePrices)
		if err != nil {
			return nil, apperrors.Validation(op, "volume_prices for ingredient %d: %v", *e.IngredientID, err)
		}
		rows[i] = models.MenuItemIngredientConfig{
			MenuItemID:        itemID,
			IngredientID:      *e.IngredientID,
			SelectionType:     e.SelectionType,
			PriceOverride:     e.PriceOverride,
			VolumePrices:      prices,
			IngredientGroupID: e.IngredientGroupID,
			IsRequired:        e.IsRequired,
		}
	}

	err = h.configs.ReplaceItemConfigs(ctx, itemID, rows)
	recordReplacement(scopeItem, err)
	if err != nil {
		return nil, err
	}

	h.InvalidateMenuCaches(ctx, op)
	h.log.WithField("menu_item_id", itemID).WithField("rows", len(rows)).Info("item ingredient configs replaced")
	return accepted, nil
}

// normalizeEntries validates a configuration payload and expands group
// entries into one entry per member. Explicit ingredient entries win over
// members contributed by a group, and the first group to contribute an
// ingredient wins over later groups.
func (h *MenuHandler) normalizeEntries(ctx context.Context, op string, entries []dto.ConfigEntry) ([]dto.ConfigEntry, error) {
	explicit := make(map[int64]bool, len(entries))
	groups := make(map[int64]*models.IngredientGroup)

	for i, e := range entries {
		if e.IngredientID == nil && e.IngredientGroupID == nil {
			return nil, apperrors.Validation(op, "config %d: ingredient_id or ingredient_group_id is required", i)
		}
		if e.SelectionType != "" && !models.ValidSelectionType(e.SelectionType) {
			return nil, apperrors.Validation(op, "config %d: selection_type must be %q or %q, got %q",
				i, models.SelectionSingle, models.SelectionMultiple, e.SelectionType)
		}
		if e.PriceOverride.Valid && e.PriceOverride.Decimal.IsNegative() {
			return nil, apperrors.Validation(op, "config %d: price_override cannot be negative", i)
		}
		for label, price := range e.VolumePrices {
			if label == "" {
				return nil, apperrors.Validation(op, "config %d: volume_prices labels cannot be empty", i)
			}
			if price.IsNegative() {
				return nil, apperrors.Validation(op, "config %d: volume price for %q cannot be negative", i, label)
			}
		}
		if e.IngredientID != nil {
			if explicit[*e.IngredientID] {
				return nil, apperrors.Validation(op, "ingredient %d is configured more than once", *e.IngredientID)
			}
			explicit[*e.IngredientID] = true
		}
		if e.IngredientGroupID != nil {
			if _, ok := groups[*e.IngredientGroupID]; !ok {
				g, err := h.groups.GetGroup(ctx, *e.IngredientGroupID)
				if err != nil {
					return nil, err
				}
				groups[g.ID] = g
			}
		}
	}

	accepted := make([]dto.ConfigEntry, 0, len(entries))
	taken := make(map[int64]bool, len(entries))
	for _, e := range entries {
		var group *models.IngredientGroup
		if e.IngredientGroupID != nil {
			group = groups[*e.IngredientGroupID]
		}

		if e.IngredientID != nil {
			e.SelectionType = selectionOrDefault(e.SelectionType, group)
			if group != nil && group.IsRequired {
				e.IsRequired = true
			}
			taken[*e.IngredientID] = true
			accepted = append(accepted, e)
			continue
		}

		for _, m := range group.Items {
			if explicit[m.IngredientID] || taken[m.IngredientID] {
				continue
			}
			id := m.IngredientID
			groupID := group.ID
			taken[id] = true
			accepted = append(accepted, dto.ConfigEntry{
				IngredientID:      &id,
				IngredientGroupID: &groupID,
				SelectionType:     selectionOrDefault(e.SelectionType, group),
				PriceOverride:     e.PriceOverride,
				VolumePrices:      e.VolumePrices,
				IsRequired:        e.IsRequired || group.IsRequired,
			})
		}
	}

	if err := h.ensureIngredientsExist(ctx, op, accepted); err != nil {
		return nil, err
	}
	return accepted, nil
}

func selectionOrDefault(selection string, group *models.IngredientGroup) string {
	if selection != "" {
		return selection
	}
	if group != nil && group.DefaultSelectionType != nil && models.ValidSelectionType(*group.DefaultSelectionType) {
		return *group.DefaultSelectionType
	}
	return models.SelectionMultiple
}

func (h *MenuHandler) ensureIngredientsExist(ctx context.Context, op string, entries []dto.ConfigEntry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = *e.IngredientID
	}
	found, err := h.ingredients.GetIngredientsByIDs(ctx, ids)
	if err != nil {
		return err
	}
	present := make(map[int64]bool, len(found))
	for _, ing := range found {
		present[ing.ID] = true
	}
	for _, id := range ids {
		if !present[id] {
			return apperrors.NotFound(op, "ingredient %d not found", id)
		}
	}
	return nil
}
