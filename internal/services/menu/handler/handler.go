package handler

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/database/models"
	"juicebar-system/internal/menucache"
	"juicebar-system/internal/metrics"
	"juicebar-system/internal/services/menu/dto"
	"juicebar-system/internal/services/menu/repository"
)

// --- Helpers ---
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// --- Handler ---

type MenuHandler struct {
	menu        repository.MenuRepository
	ingredients repository.IngredientRepository
	groups      repository.GroupRepository
	configs     repository.ConfigRepository
	cache       menucache.Cache
	log         *logrus.Logger

	lastVersion atomic.Int64
}

func NewMenuHandler(repos repository.Repositories, cache menucache.Cache, log *logrus.Logger) *MenuHandler {
	return &MenuHandler{
		menu:        repos.Menu,
		ingredients: repos.Ingredients,
		groups:      repos.Groups,
		configs:     repos.Configs,
		cache:       cache,
		log:         log,
	}
}

// InvalidateMenuCaches drops the cached menu and bumps the client version.
// It runs after a write has committed, so a failure here is logged as a
// consistency warning and never returned.
func (h *MenuHandler) InvalidateMenuCaches(ctx context.Context, op string) {
	if err := h.cache.Invalidate(ctx); err != nil {
		h.warnConsistency(op, err)
		return
	}
	if _, err := h.cache.BumpVersion(ctx); err != nil {
		h.warnConsistency(op, err)
	}
}

func (h *MenuHandler) warnConsistency(op string, err error) {
	warning := apperrors.ConsistencyWarning(op, err)
	h.log.WithFields(logrus.Fields{
		"op":   op,
		"kind": warning.Kind.String(),
	}).WithError(err).Warn(warning.Message)
}

// parseVolumePrices decodes a stored volume_prices column. Anything that is
// not a JSON object of label to price is logged and treated as absent.
func (h *MenuHandler) parseVolumePrices(raw []byte, ingredientID int64) map[string]decimal.Decimal {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var prices map[string]decimal.Decimal
	if err := json.Unmarshal(raw, &prices); err != nil {
		h.log.WithFields(logrus.Fields{
			"ingredient_id": ingredientID,
		}).WithError(err).Warn("ignoring malformed volume_prices")
		return nil
	}
	if len(prices) == 0 {
		return nil
	}
	return prices
}

func encodeVolumePrices(prices map[string]decimal.Decimal) ([]byte, error) {
	if len(prices) == 0 {
		return nil, nil
	}
	return json.Marshal(prices)
}

// --- DTO Conversions ---

func ingredientToDTO(ing models.CustomIngredient) dto.Ingredient {
	return dto.Ingredient{
		ID:                 ing.ID,
		Name:               ing.Name,
		Description:        strVal(ing.Description),
		Price:              ing.Price,
		Image:              strVal(ing.Image),
		IngredientCategory: ing.IngredientCategory,
		IsAvailable:        ing.IsAvailable.Bool(),
		SortOrder:          ing.SortOrder,
	}
}

func groupToDTO(g models.IngredientGroup) dto.Group {
	out := dto.Group{
		ID:                   g.ID,
		Name:                 g.Name,
		SortOrder:            g.SortOrder,
		DefaultSelectionType: strVal(g.DefaultSelectionType),
		IsRequired:           g.IsRequired,
		Members:              make([]dto.GroupMember, len(g.Items)),
	}
	for i, m := range g.Items {
		out.Members[i] = dto.GroupMember{
			IngredientID:  m.IngredientID,
			SortOrder:     m.SortOrder,
			PriceOverride: m.PriceOverride,
		}
	}
	return out
}

func itemVolumeToDTO(v models.MenuItemVolume) dto.Volume {
	return dto.Volume{
		ID:        v.ID,
		Volume:    v.Volume,
		Price:     v.Price,
		IsDefault: v.IsDefault,
		SortOrder: v.SortOrder,
	}
}

func additionalToDTO(a models.AdditionalItem) dto.AdditionalItem {
	return dto.AdditionalItem{
		ID:          a.ID,
		Name:        a.Name,
		Price:       a.Price,
		IsAvailable: a.IsAvailable.Bool(),
		SortOrder:   a.SortOrder,
	}
}

// itemVolumes returns the volumes offered for an item: its own volume rows,
// or its category's volumes priced at the item price when it has none.
func itemVolumes(item models.MenuItem, own []models.MenuItemVolume, category []models.CategoryVolume) []dto.Volume {
	if len(own) > 0 {
		out := make([]dto.Volume, len(own))
		for i, v := range own {
			out[i] = itemVolumeToDTO(v)
		}
		return out
	}
	out := make([]dto.Volume, len(category))
	for i, v := range category {
		out[i] = dto.Volume{
			ID:        v.ID,
			Volume:    v.Volume,
			Price:     item.Price,
			IsDefault: v.IsDefault,
			SortOrder: v.SortOrder,
		}
	}
	return out
}

func recordReplacement(scope string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperrors.KindOf(err).String()
	}
	metrics.ConfigReplacements.WithLabelValues(scope, outcome).Inc()
}
