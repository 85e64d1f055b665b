package repository

import (
	"context"

	"gorm.io/gorm"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/database/models"
)

func (s *GormStore) ListIngredients(ctx context.Context, includeInactive bool) ([]models.CustomIngredient, error) {
	var ingredients []models.CustomIngredient
	err := s.db.WithContext(ctx).
		Order("ingredient_category, sort_order, name, id").
		Find(&ingredients).Error
	if err != nil {
		return nil, apperrors.Store("list ingredients", err)
	}
	if includeInactive {
		return ingredients, nil
	}

	available := ingredients[:0]
	for _, ing := range ingredients {
		if ing.IsAvailable.Bool() {
			available = append(available, ing)
		}
	}
	return available, nil
}

func (s *GormStore) GetIngredient(ctx context.Context, id int64) (*models.CustomIngredient, error) {
	var ingredient models.CustomIngredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, lookupErr("get ingredient", "ingredient", id, err)
	}
	return &ingredient, nil
}

func (s *GormStore) GetIngredientsByIDs(ctx context.Context, ids []int64) ([]models.CustomIngredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ingredients []models.CustomIngredient
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error; err != nil {
		return nil, apperrors.Store("get ingredients", err)
	}
	return ingredients, nil
}

func (s *GormStore) CreateIngredient(ctx context.Context, ingredient *models.CustomIngredient) error {
	if err := s.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return apperrors.Store("create ingredient", err)
	}
	return nil
}

func (s *GormStore) UpdateIngredient(ctx context.Context, ingredient *models.CustomIngredient) error {
	if err := s.db.WithContext(ctx).Save(ingredient).Error; err != nil {
		return apperrors.Store("update ingredient", err)
	}
	return nil
}

// DeleteIngredient removes the ingredient together with every configuration
// and group row that references it.
func (s *GormStore) DeleteIngredient(ctx context.Context, id int64) error {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.CategoryIngredientConfig{}).Error; err != nil {
			return err
		}
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.MenuItemIngredientConfig{}).Error; err != nil {
			return err
		}
		if err := tx.Where("ingredient_id = ?", id).Delete(&models.IngredientGroupItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.CustomIngredient{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return apperrors.Store("delete ingredient", err)
	}
	if affected == 0 {
		return apperrors.NotFound("delete ingredient", "ingredient %d not found", id)
	}
	return nil
}
