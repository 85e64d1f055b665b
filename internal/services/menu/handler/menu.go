package handler

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"juicebar-system/internal/database/models"
	"juicebar-system/internal/metrics"
	"juicebar-system/internal/services/menu/dto"
)

const rebuildConcurrency = 8

// GetMenu serves the public menu from the cache, rebuilding it on a miss.
// Concurrent misses each rebuild and the last Set wins.
func (h *MenuHandler) GetMenu(ctx context.Context) (*dto.MenuSnapshot, error) {
	snapshot, err := h.cache.Get(ctx)
	if err != nil {
		h.log.WithError(err).Warn("menu cache read failed, rebuilding")
	}
	if snapshot != nil {
		return snapshot, nil
	}

	snapshot, err = h.rebuildMenu(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.cache.Set(ctx, snapshot); err != nil {
		h.log.WithError(err).Warn("menu cache write failed")
	}
	return snapshot, nil
}

func (h *MenuHandler) CacheVersion(ctx context.Context) (int64, error) {
	return h.cache.Version(ctx)
}

// menuVersion falls back to the last version seen when the cache backend is
// unreachable; the menu stays readable from the store.
func (h *MenuHandler) menuVersion(ctx context.Context) int64 {
	v, err := h.cache.Version(ctx)
	if err != nil {
		last := h.lastVersion.Load()
		h.log.WithError(err).WithField("version", last).Warn("menu cache version unavailable, using last known")
		return last
	}
	h.lastVersion.Store(v)
	return v
}

func (h *MenuHandler) rebuildMenu(ctx context.Context) (*dto.MenuSnapshot, error) {
	timer := prometheus.NewTimer(metrics.MenuRebuildDuration)
	defer timer.ObserveDuration()

	// The version is read before any row so a write that commits mid-rebuild
	// bumps past it and the cache refuses the result.
	version := h.menuVersion(ctx)

	var (
		categories []models.MenuCategory
		items      []models.MenuItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = h.menu.ListActiveCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = h.menu.ListAvailableItems(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	categoryIndex := make(map[int64]int, len(categories))
	out := make([]dto.MenuCategory, len(categories))
	for i, c := range categories {
		categoryIndex[c.ID] = i
		out[i] = dto.MenuCategory{ID: c.ID, Name: c.Name, SortOrder: c.SortOrder, Items: []dto.MenuItem{}}
	}

	var visible []models.MenuItem
	for _, it := range items {
		if _, ok := categoryIndex[it.CategoryID]; ok {
			visible = append(visible, it)
		}
	}

	categoryVolumes := make([][]models.CategoryVolume, len(categories))
	resolved := make([]dto.MenuItem, len(visible))

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(rebuildConcurrency)
	for i, c := range categories {
		i, id := i, c.ID
		g.Go(func() error {
			vols, err := h.menu.ListCategoryVolumes(gctx, id)
			categoryVolumes[i] = vols
			return err
		})
	}
	for i, it := range visible {
		i, it := i, it
		g.Go(func() error {
			offered, err := h.resolveForItem(gctx, it.ID, it.CategoryID, dto.ResolveOptions{})
			if err != nil {
				return err
			}
			resolved[i] = menuItemToDTO(it, offered)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, it := range visible {
		entry := resolved[i]
		idx := categoryIndex[it.CategoryID]
		entry.Volumes = itemVolumes(it, it.Volumes, categoryVolumes[idx])
		out[idx].Items = append(out[idx].Items, entry)
	}

	return &dto.MenuSnapshot{
		Version:     version,
		GeneratedAt: time.Now().UTC(),
		Categories:  out,
	}, nil
}

func menuItemToDTO(it models.MenuItem, offered []dto.OfferedIngredient) dto.MenuItem {
	return dto.MenuItem{
		ID:              it.ID,
		CategoryID:      it.CategoryID,
		Name:            it.Name,
		Description:     strVal(it.Description),
		Image:           strVal(it.Image),
		Price:           it.Price,
		Volume:          strVal(it.Volume),
		DiscountPercent: it.DiscountPercent,
		SortOrder:       it.SortOrder,
		Ingredients:     offered,
	}
}
