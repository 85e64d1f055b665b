package handler

import (
	"context"
	"strings"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/database/models"
	"juicebar-system/internal/services/menu/dto"
)

func (h *MenuHandler) ListGroups(ctx context.Context) ([]dto.Group, error) {
	groups, err := h.groups.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Group, len(groups))
	for i, g := range groups {
		out[i] = groupToDTO(g)
	}
	return out, nil
}

func (h *MenuHandler) CreateGroup(ctx context.Context, in dto.GroupInput) (*dto.Group, error) {
	ctx = context.WithoutCancel(ctx)
	const op = "create ingredient group"

	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.Validation(op, "name is required")
	}
	if in.DefaultSelectionType != nil && !models.ValidSelectionType(*in.DefaultSelectionType) {
		return nil, apperrors.Validation(op, "default_selection_type must be %q or %q",
			models.SelectionSingle, models.SelectionMultiple)
	}

	group := models.IngredientGroup{
		Name:                 strings.TrimSpace(in.Name),
		SortOrder:            in.SortOrder,
		DefaultSelectionType: in.DefaultSelectionType,
		IsRequired:           in.IsRequired,
	}
	if err := h.groups.CreateGroup(ctx, &group); err != nil {
		return nil, err
	}
	out := groupToDTO(group)
	return &out, nil
}

// ReplaceGroupMembers swaps the ordered membership of a group. Membership
// feeds resolution ordering and pricing, so the menu cache is invalidated.
func (h *MenuHandler) ReplaceGroupMembers(ctx context.Context, groupID int64, members []dto.GroupMember) (*dto.Group, error) {
	ctx = context.WithoutCancel(ctx)
	const op = "replace ingredient group members"

	group, err := h.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(members))
	rows := make([]models.IngredientGroupItem, len(members))
	entries := make([]dto.ConfigEntry, len(members))
	for i, m := range members {
		if seen[m.IngredientID] {
			return nil, apperrors.Validation(op, "ingredient %d listed more than once", m.IngredientID)
		}
		seen[m.IngredientID] = true
		if m.PriceOverride.Valid && m.PriceOverride.Decimal.IsNegative() {
			return nil, apperrors.Validation(op, "price_override for ingredient %d cannot be negative", m.IngredientID)
		}
		id := m.IngredientID
		entries[i] = dto.ConfigEntry{IngredientID: &id}
		rows[i] = models.IngredientGroupItem{
			GroupID:       groupID,
			IngredientID:  m.IngredientID,
			SortOrder:     m.SortOrder,
			PriceOverride: m.PriceOverride,
		}
	}
	if err := h.ensureIngredientsExist(ctx, op, entries); err != nil {
		return nil, err
	}

	if err := h.groups.ReplaceGroupMembers(ctx, groupID, rows); err != nil {
		return nil, err
	}
	h.InvalidateMenuCaches(ctx, op)

	group.Items = rows
	out := groupToDTO(*group)
	return &out, nil
}
