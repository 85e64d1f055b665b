package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/database/models"
)

func (s *GormStore) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, lookupErr("get menu item", "menu item", id, err)
	}
	return &item, nil
}

func (s *GormStore) GetCategory(ctx context.Context, id int64) (*models.MenuCategory, error) {
	var category models.MenuCategory
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, lookupErr("get menu category", "menu category", id, err)
	}
	return &category, nil
}

// ListActiveCategories filters in Go so the availability normalization on
// scan decides what "active" means.
func (s *GormStore) ListActiveCategories(ctx context.Context) ([]models.MenuCategory, error) {
	var categories []models.MenuCategory
	if err := s.db.WithContext(ctx).Order("sort_order, id").Find(&categories).Error; err != nil {
		return nil, apperrors.Store("list menu categories", err)
	}

	active := categories[:0]
	for _, c := range categories {
		if c.IsActive.Bool() {
			active = append(active, c)
		}
	}
	return active, nil
}

func (s *GormStore) ListAvailableItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.db.WithContext(ctx).
		Preload("Volumes", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Order("sort_order, name, id").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Store("list menu items", err)
	}

	available := items[:0]
	for _, it := range items {
		if it.IsAvailable.Bool() {
			available = append(available, it)
		}
	}
	return available, nil
}

func (s *GormStore) ListItemVolumes(ctx context.Context, itemID int64) ([]models.MenuItemVolume, error) {
	var volumes []models.MenuItemVolume
	if err := s.db.WithContext(ctx).Where("menu_item_id = ?", itemID).Order("sort_order, id").Find(&volumes).Error; err != nil {
		return nil, apperrors.Store("list menu item volumes", err)
	}
	return volumes, nil
}

func (s *GormStore) ListCategoryVolumes(ctx context.Context, categoryID int64) ([]models.CategoryVolume, error) {
	var volumes []models.CategoryVolume
	if err := s.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("sort_order, id").Find(&volumes).Error; err != nil {
		return nil, apperrors.Store("list category volumes", err)
	}
	return volumes, nil
}

func (s *GormStore) ListAdditionalItems(ctx context.Context, itemID int64) ([]models.AdditionalItem, error) {
	var items []models.AdditionalItem
	if err := s.db.WithContext(ctx).Where("menu_item_id = ?", itemID).Order("sort_order, id").Find(&items).Error; err != nil {
		return nil, apperrors.Store("list additional items", err)
	}
	return items, nil
}

func (s *GormStore) ReplaceCategoryVolumes(ctx context.Context, categoryID int64, volumes []models.CategoryVolume) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", categoryID).Delete(&models.CategoryVolume{}).Error; err != nil {
			return err
		}
		if len(volumes) == 0 {
			return nil
		}
		for i := range volumes {
			volumes[i].ID = 0
			volumes[i].CategoryID = categoryID
		}
		return tx.Create(&volumes).Error
	})
	if err != nil {
		return apperrors.Store("replace category volumes", err)
	}
	return nil
}

func (s *GormStore) ReplaceItemVolumes(ctx context.Context, itemID int64, volumes []models.MenuItemVolume) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_item_id = ?", itemID).Delete(&models.MenuItemVolume{}).Error; err != nil {
			return err
		}
		if len(volumes) == 0 {
			return nil
		}
		for i := range volumes {
			volumes[i].ID = 0
			volumes[i].MenuItemID = itemID
		}
		return tx.Create(&volumes).Error
	})
	if err != nil {
		return apperrors.Store("replace menu item volumes", err)
	}
	return nil
}

func (s *GormStore) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error; err != nil {
		return apperrors.Store("update menu item", err)
	}
	return nil
}

func (s *GormStore) DeleteMenuItem(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.MenuItem{}, id)
	if res.Error != nil {
		return apperrors.Store("delete menu item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("delete menu item", "menu item %d not found", id)
	}
	return nil
}
