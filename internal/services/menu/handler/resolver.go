package handler

import (
	"context"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"juicebar-system/internal/database/models"
	"juicebar-system/internal/metrics"
	"juicebar-system/internal/services/menu/dto"
	"juicebar-system/internal/services/menu/repository"
)

// ResolveIngredients returns the ingredients offered for a menu item after
// merging its own configuration over its category's. Unavailable ingredients
// are dropped unless opts.IncludeInactive is set.
func (h *MenuHandler) ResolveIngredients(ctx context.Context, menuItemID int64, opts dto.ResolveOptions) ([]dto.OfferedIngredient, error) {
	timer := prometheus.NewTimer(metrics.ResolveDuration)
	defer timer.ObserveDuration()

	item, err := h.menu.GetMenuItem(ctx, menuItemID)
	if err != nil {
		return nil, err
	}
	return h.resolveForItem(ctx, item.ID, item.CategoryID, opts)
}

func (h *MenuHandler) resolveForItem(ctx context.Context, itemID, categoryID int64, opts dto.ResolveOptions) ([]dto.OfferedIngredient, error) {
	var itemRows, categoryRows []repository.ConfigRow

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := h.configs.ListItemConfigRows(gctx, itemID)
		itemRows = rows
		return err
	})
	g.Go(func() error {
		rows, err := h.configs.ListCategoryConfigRows(gctx, categoryID)
		categoryRows = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return h.mergeOffered(itemRows, categoryRows, opts), nil
}

// mergeOffered is the pure part of resolution: filter, dedup with item rows
// winning, sort, price.
func (h *MenuHandler) mergeOffered(itemRows, categoryRows []repository.ConfigRow, opts dto.ResolveOptions) []dto.OfferedIngredient {
	chosen := make(map[int64]repository.ConfigRow, len(itemRows)+len(categoryRows))
	for _, layer := range [][]repository.ConfigRow{itemRows, categoryRows} {
		for _, row := range layer {
			if !opts.IncludeInactive && !row.Ingredient.IsAvailable.Bool() {
				continue
			}
			if prev, ok := chosen[row.IngredientID]; ok && rank(prev.Source) <= rank(row.Source) {
				continue
			}
			chosen[row.IngredientID] = row
		}
	}

	offered := make([]dto.OfferedIngredient, 0, len(chosen))
	for _, row := range chosen {
		offered = append(offered, h.toOffered(row))
	}
	sortOffered(offered)
	return offered
}

func rank(source string) int {
	if source == dto.SourceMenuItem {
		return 0
	}
	return 1
}

func sortOffered(offered []dto.OfferedIngredient) {
	sort.Slice(offered, func(i, j int) bool {
		a, b := offered[i], offered[j]
		if ra, rb := rank(a.Source), rank(b.Source); ra != rb {
			return ra < rb
		}
		if a.IngredientCategory != b.IngredientCategory {
			return a.IngredientCategory < b.IngredientCategory
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

func (h *MenuHandler) toOffered(row repository.ConfigRow) dto.OfferedIngredient {
	ing := row.Ingredient

	sortOrder := ing.SortOrder
	if row.GroupSortOrder != nil {
		sortOrder = *row.GroupSortOrder
	}

	price := ing.Price
	switch {
	case row.PriceOverride.Valid:
		price = row.PriceOverride.Decimal
	case row.GroupPriceOverride.Valid:
		price = row.GroupPriceOverride.Decimal
	}

	selection := row.SelectionType
	if !models.ValidSelectionType(selection) {
		selection = models.SelectionMultiple
	}

	category := ing.IngredientCategory
	if category == "" {
		category = models.DefaultIngredientCategory
	}

	return dto.OfferedIngredient{
		ID:                 ing.ID,
		Name:               ing.Name,
		Description:        strVal(ing.Description),
		Image:              strVal(ing.Image),
		IngredientCategory: category,
		BasePrice:          ing.Price,
		Price:              price,
		VolumePrices:       h.parseVolumePrices(row.VolumePrices, ing.ID),
		SelectionType:      selection,
		IsRequired:         row.IsRequired,
		IngredientGroupID:  row.IngredientGroupID,
		SortOrder:          sortOrder,
		IsAvailable:        ing.IsAvailable.Bool(),
		Source:             row.Source,
	}
}
