package repository

import (
	"errors"

	"gorm.io/gorm"

	"juicebar-system/internal/apperrors"
)

// GormStore implements every menu repository on one *gorm.DB.
type GormStore struct {
	db *gorm.DB
}

var (
	_ MenuRepository       = (*GormStore)(nil)
	_ IngredientRepository = (*GormStore)(nil)
	_ GroupRepository      = (*GormStore)(nil)
	_ ConfigRepository     = (*GormStore)(nil)
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Repositories() Repositories {
	return Repositories{Menu: s, Ingredients: s, Groups: s, Configs: s}
}

func lookupErr(op, what string, id int64, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(op, "%s %d not found", what, id)
	}
	return apperrors.Store(op, err)
}
