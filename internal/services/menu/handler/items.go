package handler

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/database/models"
	"juicebar-system/internal/services/menu/dto"
)

func checkVolumeLabels(op string, labels []string, defaults int) error {
	if defaults > 1 {
		return apperrors.Validation(op, "at most one volume can be the default")
	}
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if l == "" {
			return apperrors.Validation(op, "volume label is required")
		}
		if seen[l] {
			return apperrors.Validation(op, "volume %q listed more than once", l)
		}
		seen[l] = true
	}
	return nil
}

func (h *MenuHandler) ReplaceCategoryVolumes(ctx context.Context, categoryID int64, volumes []dto.CategoryVolume) ([]dto.CategoryVolume, error) {
	ctx = context.WithoutCancel(ctx)
	const op = "replace category volumes"

	if _, err := h.menu.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	labels := make([]string, len(volumes))
	rows := make([]models.CategoryVolume, len(volumes))
	defaults := 0
	for i, v := range volumes {
		labels[i] = strings.TrimSpace(v.Volume)
		if v.IsDefault {
			defaults++
		}
		rows[i] = models.CategoryVolume{
			CategoryID: categoryID,
			Volume:     labels[i],
			IsDefault:  v.IsDefault,
			SortOrder:  v.SortOrder,
		}
	}
	if err := checkVolumeLabels(op, labels, defaults); err != nil {
		return nil, err
	}

	if err := h.menu.ReplaceCategoryVolumes(ctx, categoryID, rows); err != nil {
		return nil, err
	}
	h.InvalidateMenuCaches(ctx, op)

	out := make([]dto.CategoryVolume, len(rows))
	for i, r := range rows {
		out[i] = dto.CategoryVolume{Volume: r.Volume, IsDefault: r.IsDefault, SortOrder: r.SortOrder}
	}
	return out, nil
}

func (h *MenuHandler) ReplaceItemVolumes(ctx context.Context, itemID int64, volumes []dto.Volume) ([]dto.Volume, error) {
	ctx = context.WithoutCancel(ctx)
	const op = "replace menu item volumes"

	if _, err := h.menu.GetMenuItem(ctx, itemID); err != nil {
		return nil, err
	}

	labels := make([]string, len(volumes))
	rows := make([]models.MenuItemVolume, len(volumes))
	defaults := 0
	for i, v := range volumes {
		labels[i] = strings.TrimSpace(v.Volume)
		if v.IsDefault {
			defaults++
		}
		if v.Price.IsNegative() {
			return nil, apperrors.Validation(op, "price for volume %q cannot be negative", labels[i])
		}
		rows[i] = models.MenuItemVolume{
			MenuItemID: itemID,
			Volume:     labels[i],
			Price:      v.Price,
			IsDefault:  v.IsDefault,
			SortOrder:  v.SortOrder,
		}
	}
	if err := checkVolumeLabels(op, labels, defaults); err != nil {
		return nil, err
	}

	if err := h.menu.ReplaceItemVolumes(ctx, itemID, rows); err != nil {
		return nil, err
	}
	h.InvalidateMenuCaches(ctx, op)

	out := make([]dto.Volume, len(rows))
	for i, r := range rows {
		out[i] = itemVolumeToDTO(r)
	}
	return out, nil
}

func (h *MenuHandler) UpdateMenuItem(ctx context.Context, itemID int64, in dto.MenuItemUpdate) (*dto.MenuItem, error) {
	ctx = context.WithoutCancel(ctx)
	const op = "update menu item"

	item, err := h.menu.GetMenuItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if in.CategoryID != nil && *in.CategoryID != item.CategoryID {
		if _, err := h.menu.GetCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		item.CategoryID = *in.CategoryID
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.Validation(op, "name cannot be empty")
		}
		item.Name = name
	}
	if in.Description != nil {
		item.Description = strPtr(*in.Description)
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, apperrors.Validation(op, "price cannot be negative")
		}
		item.Price = *in.Price
	}
	if in.Volume != nil {
		item.Volume = strPtr(strings.TrimSpace(*in.Volume))
	}
	if in.DiscountPercent != nil {
		if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
			return nil, apperrors.Validation(op, "discount_percent must be between 0 and 100")
		}
		item.DiscountPercent = *in.DiscountPercent
	}
	if in.IsAvailable != nil {
		item.IsAvailable = models.Availability(*in.IsAvailable)
	}
	if in.SortOrder != nil {
		item.SortOrder = *in.SortOrder
	}

	if err := h.menu.UpdateMenuItem(ctx, item); err != nil {
		return nil, err
	}
	h.InvalidateMenuCaches(ctx, op)

	out := menuItemToDTO(*item, nil)
	return &out, nil
}

func (h *MenuHandler) DeleteMenuItem(ctx context.Context, itemID int64) error {
	ctx = context.WithoutCancel(ctx)
	if err := h.menu.DeleteMenuItem(ctx, itemID); err != nil {
		return err
	}
	h.InvalidateMenuCaches(ctx, "delete menu item")
	return nil
}
