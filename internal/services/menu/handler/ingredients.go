package handler

import (
	"context"
	"strings"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/database/models"
	"juicebar-system/internal/services/menu/dto"
)

func (h *MenuHandler) ListIngredients(ctx context.Context, includeInactive bool) ([]dto.Ingredient, error) {
	ingredients, err := h.ingredients.ListIngredients(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Ingredient, len(ingredients))
	for i, ing := range ingredients {
		out[i] = ingredientToDTO(ing)
	}
	return out, nil
}

func validateIngredient(op string, in dto.IngredientInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperrors.Validation(op, "name is required")
	}
	if in.Price.IsNegative() {
		return apperrors.Validation(op, "price cannot be negative")
	}
	return nil
}

func (h *MenuHandler) CreateIngredient(ctx context.Context, in dto.IngredientInput) (*dto.Ingredient, error) {
	ctx = context.WithoutCancel(ctx)
	const op = "create ingredient"
	if err := validateIngredient(op, in); err != nil {
		return nil, err
	}

	category := strings.TrimSpace(in.IngredientCategory)
	if category == "" {
		category = models.DefaultIngredientCategory
	}
	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}

	ingredient := models.CustomIngredient{
		Name:               strings.TrimSpace(in.Name),
		Description:        in.Description,
		Price:              in.Price,
		Image:              in.Image,
		IngredientCategory: category,
		IsAvailable:        models.Availability(available),
		SortOrder:          in.SortOrder,
	}
	if err := h.ingredients.CreateIngredient(ctx, &ingredient); err != nil {
		return nil, err
	}

	h.InvalidateMenuCaches(ctx, op)
	out := ingredientToDTO(ingredient)
	return &out, nil
}

func (h *MenuHandler) UpdateIngredient(ctx context.Context, id int64, in dto.IngredientInput) (*dto.Ingredient, error) {
	ctx = context.WithoutCancel(ctx)
	const op = "update ingredient"
	if err := validateIngredient(op, in); err != nil {
		return nil, err
	}

	ingredient, err := h.ingredients.GetIngredient(ctx, id)
	if err != nil {
		return nil, err
	}

	ingredient.Name = strings.TrimSpace(in.Name)
	ingredient.Price = in.Price
	ingredient.SortOrder = in.SortOrder
	if in.Description != nil {
		ingredient.Description = strPtr(*in.Description)
	}
	if in.Image != nil {
		ingredient.Image = strPtr(*in.Image)
	}
	if c := strings.TrimSpace(in.IngredientCategory); c != "" {
		ingredient.IngredientCategory = c
	}
	if in.IsAvailable != nil {
		ingredient.IsAvailable = models.Availability(*in.IsAvailable)
	}

	if err := h.ingredients.UpdateIngredient(ctx, ingredient); err != nil {
		return nil, err
	}

	h.InvalidateMenuCaches(ctx, op)
	out := ingredientToDTO(*ingredient)
	return &out, nil
}

// DeleteIngredient removes the ingredient and every configuration or group
// membership that references it.
func (h *MenuHandler) DeleteIngredient(ctx context.Context, id int64) error {
	ctx = context.WithoutCancel(ctx)
	if err := h.ingredients.DeleteIngredient(ctx, id); err != nil {
		return err
	}
	h.InvalidateMenuCaches(ctx, "delete ingredient")
	return nil
}
