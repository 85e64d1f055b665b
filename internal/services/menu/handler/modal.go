package handler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/database/models"
	"juicebar-system/internal/services/menu/dto"
	"juicebar-system/internal/services/menu/pricing"
)

type itemView struct {
	item       *models.MenuItem
	offered    []dto.OfferedIngredient
	volumes    []dto.Volume
	additional []dto.AdditionalItem
}

// loadItemView fetches everything the customization modal and the checkout
// quote need for one item, in parallel.
func (h *MenuHandler) loadItemView(ctx context.Context, itemID int64) (*itemView, error) {
	item, err := h.menu.GetMenuItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var (
		offered    []dto.OfferedIngredient
		own        []models.MenuItemVolume
		category   []models.CategoryVolume
		additional []models.AdditionalItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		offered, err = h.resolveForItem(gctx, item.ID, item.CategoryID, dto.ResolveOptions{})
		return err
	})
	g.Go(func() error {
		var err error
		own, err = h.menu.ListItemVolumes(gctx, item.ID)
		return err
	})
	g.Go(func() error {
		var err error
		category, err = h.menu.ListCategoryVolumes(gctx, item.CategoryID)
		return err
	})
	g.Go(func() error {
		var err error
		additional, err = h.menu.ListAdditionalItems(gctx, item.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &itemView{
		item:       item,
		offered:    offered,
		volumes:    itemVolumes(*item, own, category),
		additional: make([]dto.AdditionalItem, 0, len(additional)),
	}
	for _, a := range additional {
		view.additional = append(view.additional, additionalToDTO(a))
	}
	return view, nil
}

func (h *MenuHandler) GetModalData(ctx context.Context, itemID int64) (*dto.ModalData, error) {
	view, err := h.loadItemView(ctx, itemID)
	if err != nil {
		return nil, err
	}

	available := make([]dto.AdditionalItem, 0, len(view.additional))
	for _, a := range view.additional {
		if a.IsAvailable {
			available = append(available, a)
		}
	}
	return &dto.ModalData{
		Ingredients:     view.offered,
		Volumes:         view.volumes,
		AdditionalItems: available,
	}, nil
}

// QuoteLineItem prices a customer's selection against the same resolved data
// the storefront shows.
func (h *MenuHandler) QuoteLineItem(ctx context.Context, itemID int64, sel dto.Selection) (*dto.Quote, error) {
	view, err := h.loadItemView(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !view.item.IsAvailable.Bool() {
		return nil, apperrors.Validation("quote line item", "menu item %d is not available", itemID)
	}

	item := pricing.PricedItem{
		ID:              view.item.ID,
		Price:           view.item.Price,
		Volume:          strVal(view.item.Volume),
		DiscountPercent: view.item.DiscountPercent,
		Volumes:         view.volumes,
	}
	quote, err := pricing.ComputeLineTotal(item, view.offered, view.additional, sel)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}
