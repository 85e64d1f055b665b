package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/database/models"
	"juicebar-system/internal/services/menu/dto"
)

func (s *GormStore) ListItemConfigRows(ctx context.Context, itemID int64) ([]ConfigRow, error) {
	var configs []models.MenuItemIngredientConfig
	err := s.db.WithContext(ctx).
		Preload("Ingredient").
		Where("menu_item_id = ?", itemID).
		Find(&configs).Error
	if err != nil {
		return nil, apperrors.Store("list item ingredient configs", err)
	}

	rows := make([]ConfigRow, 0, len(configs))
	for _, c := range configs {
		if c.Ingredient == nil {
			continue
		}
		rows = append(rows, ConfigRow{
			Source:            dto.SourceMenuItem,
			IngredientID:      c.IngredientID,
			SelectionType:     c.SelectionType,
			PriceOverride:     c.PriceOverride,
			VolumePrices:      c.VolumePrices,
			IngredientGroupID: c.IngredientGroupID,
			IsRequired:        c.IsRequired,
			Ingredient:        *c.Ingredient,
		})
	}
	return s.attachGroupMembership(ctx, rows)
}

func (s *GormStore) ListCategoryConfigRows(ctx context.Context, categoryID int64) ([]ConfigRow, error) {
	var configs []models.CategoryIngredientConfig
	err := s.db.WithContext(ctx).
		Preload("Ingredient").
		Where("category_id = ?", categoryID).
		Find(&configs).Error
	if err != nil {
		return nil, apperrors.Store("list category ingredient configs", err)
	}

	rows := make([]ConfigRow, 0, len(configs))
	for _, c := range configs {
		if c.Ingredient == nil {
			continue
		}
		rows = append(rows, ConfigRow{
			Source:            dto.SourceCategory,
			IngredientID:      c.IngredientID,
			SelectionType:     c.SelectionType,
			PriceOverride:     c.PriceOverride,
			VolumePrices:      c.VolumePrices,
			IngredientGroupID: c.IngredientGroupID,
			IsRequired:        c.IsRequired,
			Ingredient:        *c.Ingredient,
		})
	}
	return s.attachGroupMembership(ctx, rows)
}

type memberKey struct {
	groupID      int64
	ingredientID int64
}

// attachGroupMembership fills the group sort position and group price for rows
// whose ingredient is a member of the group the row names.
func (s *GormStore) attachGroupMembership(ctx context.Context, rows []ConfigRow) ([]ConfigRow, error) {
	seen := map[int64]bool{}
	var groupIDs []int64
	for _, r := range rows {
		if r.IngredientGroupID != nil && !seen[*r.IngredientGroupID] {
			seen[*r.IngredientGroupID] = true
			groupIDs = append(groupIDs, *r.IngredientGroupID)
		}
	}
	if len(groupIDs) == 0 {
		return rows, nil
	}

	var members []models.IngredientGroupItem
	if err := s.db.WithContext(ctx).Where("group_id IN ?", groupIDs).Find(&members).Error; err != nil {
		return nil, apperrors.Store("list ingredient group members", err)
	}

	byKey := make(map[memberKey]models.IngredientGroupItem, len(members))
	for _, m := range members {
		byKey[memberKey{m.GroupID, m.IngredientID}] = m
	}
	for i := range rows {
		if rows[i].IngredientGroupID == nil {
			continue
		}
		if m, ok := byKey[memberKey{*rows[i].IngredientGroupID, rows[i].IngredientID}]; ok {
			sort := m.SortOrder
			rows[i].GroupSortOrder = &sort
			rows[i].GroupPriceOverride = m.PriceOverride
		}
	}
	return rows, nil
}

func (s *GormStore) ReplaceCategoryConfigs(ctx context.Context, categoryID int64, configs []models.CategoryIngredientConfig) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", categoryID).Delete(&models.CategoryIngredientConfig{}).Error; err != nil {
			return err
		}
		if len(configs) == 0 {
			return nil
		}
		for i := range configs {
			configs[i].ID = 0
			configs[i].CategoryID = categoryID
			configs[i].Ingredient = nil
		}
		return tx.Omit(clause.Associations).Create(&configs).Error
	})
	if err != nil {
		return apperrors.Store("replace category ingredient configs", err)
	}
	return nil
}

func (s *GormStore) ReplaceItemConfigs(ctx context.Context, itemID int64, configs []models.MenuItemIngredientConfig) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_item_id = ?", itemID).Delete(&models.MenuItemIngredientConfig{}).Error; err != nil {
			return err
		}
		if len(configs) == 0 {
			return nil
		}
		for i := range configs {
			configs[i].ID = 0
			configs[i].MenuItemID = itemID
			configs[i].Ingredient = nil
		}
		return tx.Omit(clause.Associations).Create(&configs).Error
	})
	if err != nil {
		return apperrors.Store("replace item ingredient configs", err)
	}
	return nil
}
