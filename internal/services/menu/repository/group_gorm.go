package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/database/models"
)

func orderedMembers(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order, id")
}

func (s *GormStore) ListGroups(ctx context.Context) ([]models.IngredientGroup, error) {
	var groups []models.IngredientGroup
	err := s.db.WithContext(ctx).
		Preload("Items", orderedMembers).
		Order("sort_order, name, id").
		Find(&groups).Error
	if err != nil {
		return nil, apperrors.Store("list ingredient groups", err)
	}
	return groups, nil
}

func (s *GormStore) GetGroup(ctx context.Context, id int64) (*models.IngredientGroup, error) {
	var group models.IngredientGroup
	if err := s.db.WithContext(ctx).Preload("Items", orderedMembers).First(&group, id).Error; err != nil {
		return nil, lookupErr("get ingredient group", "ingredient group", id, err)
	}
	return &group, nil
}

func (s *GormStore) CreateGroup(ctx context.Context, group *models.IngredientGroup) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(group).Error; err != nil {
		return apperrors.Store("create ingredient group", err)
	}
	return nil
}

func (s *GormStore) ReplaceGroupMembers(ctx context.Context, groupID int64, members []models.IngredientGroupItem) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.IngredientGroupItem{}).Error; err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		for i := range members {
			members[i].ID = 0
			members[i].GroupID = groupID
			members[i].Ingredient = nil
		}
		return tx.Omit(clause.Associations).Create(&members).Error
	})
	if err != nil {
		return apperrors.Store("replace ingredient group members", err)
	}
	return nil
}
