package handler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/database/models"
	"juicebar-system/internal/logging"
	"juicebar-system/internal/menucache"
	"juicebar-system/internal/services/menu/dto"
	"juicebar-system/internal/services/menu/repository"
	"juicebar-system/internal/services/menu/repository/memory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func i64(v int64) *int64 {
	return &v
}

type fixture struct {
	store    *memory.Store
	cache    *menucache.MemoryCache
	handler  *MenuHandler
	category models.MenuCategory
	item     models.MenuItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	cache := menucache.NewMemoryCache(menucache.DefaultTTL)

	category := store.AddCategory(models.MenuCategory{Name: "Smoothies", IsActive: true})
	item := store.AddMenuItem(models.MenuItem{
		CategoryID:  category.ID,
		Name:        "Berry Blast",
		Price:       dec("10"),
		IsAvailable: true,
	})
	return &fixture{
		store:    store,
		cache:    cache,
		handler:  NewMenuHandler(store.Repositories(), cache, logging.Discard()),
		category: category,
		item:     item,
	}
}

func (f *fixture) ingredient(name, price string, available bool) models.CustomIngredient {
	return f.store.AddIngredient(models.CustomIngredient{
		Name:               name,
		Price:              dec(price),
		IngredientCategory: "fruits",
		IsAvailable:        models.Availability(available),
	})
}

func TestResolveCategoryInheritance(t *testing.T) {
	f := newFixture(t)
	a := f.ingredient("Apple", "1", true)
	f.store.AddCategoryConfig(models.CategoryIngredientConfig{
		CategoryID:    f.category.ID,
		IngredientID:  a.ID,
		SelectionType: models.SelectionMultiple,
		PriceOverride: nullDec("2"),
	})

	offered, err := f.handler.ResolveIngredients(context.Background(), f.item.ID, dto.ResolveOptions{})
	require.NoError(t, err)
	require.Len(t, offered, 1)
	assert.Equal(t, a.ID, offered[0].ID)
	assert.True(t, offered[0].Price.Equal(dec("2")))
	assert.Equal(t, dto.SourceCategory, offered[0].Source)
	assert.Equal(t, models.SelectionMultiple, offered[0].SelectionType)
}

func TestResolveItemLevelWins(t *testing.T) {
	f := newFixture(t)
	a := f.ingredient("Apple", "1", true)
	f.store.AddCategoryConfig(models.CategoryIngredientConfig{
		CategoryID:    f.category.ID,
		IngredientID:  a.ID,
		SelectionType: models.SelectionMultiple,
		PriceOverride: nullDec("2"),
	})
	f.store.AddItemConfig(models.MenuItemIngredientConfig{
		MenuItemID:    f.item.ID,
		IngredientID:  a.ID,
		SelectionType: models.SelectionSingle,
		PriceOverride: nullDec("3"),
		IsRequired:    true,
	})

	offered, err := f.handler.ResolveIngredients(context.Background(), f.item.ID, dto.ResolveOptions{})
	require.NoError(t, err)
	require.Len(t, offered, 1)
	got := offered[0]
	assert.True(t, got.Price.Equal(dec("3")))
	assert.Equal(t, models.SelectionSingle, got.SelectionType)
	assert.True(t, got.IsRequired)
	assert.Equal(t, dto.SourceMenuItem, got.Source)
}

func TestResolveAvailabilityFilter(t *testing.T) {
	f := newFixture(t)
	on := f.ingredient("Kiwi", "1", true)
	off := f.ingredient("Lime", "1", false)
	for _, ing := range []models.CustomIngredient{on, off} {
		f.store.AddCategoryConfig(models.CategoryIngredientConfig{CategoryID: f.category.ID, IngredientID: ing.ID})
	}

	offered, err := f.handler.ResolveIngredients(context.Background(), f.item.ID, dto.ResolveOptions{})
	require.NoError(t, err)
	require.Len(t, offered, 1)
	assert.Equal(t, on.ID, offered[0].ID)

	offered, err = f.handler.ResolveIngredients(context.Background(), f.item.ID, dto.ResolveOptions{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, offered, 2)
}

func TestResolveOrderingAndUniqueness(t *testing.T) {
	f := newFixture(t)
	mango := f.store.AddIngredient(models.CustomIngredient{Name: "Mango", Price: dec("1"), IngredientCategory: "fruits", SortOrder: 5, IsAvailable: true})
	banana := f.store.AddIngredient(models.CustomIngredient{Name: "Banana", Price: dec("1"), IngredientCategory: "fruits", SortOrder: 5, IsAvailable: true})
	chia := f.store.AddIngredient(models.CustomIngredient{Name: "Chia", Price: dec("1"), IngredientCategory: "seeds", SortOrder: 0, IsAvailable: true})
	honey := f.store.AddIngredient(models.CustomIngredient{Name: "Honey", Price: dec("1"), IngredientCategory: "sweet", SortOrder: 9, IsAvailable: true})
	group := f.store.AddGroup(models.IngredientGroup{
		Name:  "Toppings",
		Items: []models.IngredientGroupItem{{IngredientID: mango.ID, SortOrder: 1}},
	})

	f.store.AddItemConfig(models.MenuItemIngredientConfig{MenuItemID: f.item.ID, IngredientID: honey.ID})
	f.store.AddCategoryConfig(models.CategoryIngredientConfig{CategoryID: f.category.ID, IngredientID: chia.ID})
	f.store.AddCategoryConfig(models.CategoryIngredientConfig{CategoryID: f.category.ID, IngredientID: banana.ID})
	f.store.AddCategoryConfig(models.CategoryIngredientConfig{CategoryID: f.category.ID, IngredientID: mango.ID, IngredientGroupID: &group.ID})
	f.store.AddCategoryConfig(models.CategoryIngredientConfig{CategoryID: f.category.ID, IngredientID: honey.ID})

	offered, err := f.handler.ResolveIngredients(context.Background(), f.item.ID, dto.ResolveOptions{})
	require.NoError(t, err)

	var names []string
	seen := map[int64]bool{}
	for _, o := range offered {
		assert.False(t, seen[o.ID], "duplicate ingredient %d", o.ID)
		seen[o.ID] = true
		names = append(names, o.Name)
	}
	// item rows first; mango's group position (1) sorts it ahead of banana (5)
	assert.Equal(t, []string{"Honey", "Mango", "Banana", "Chia"}, names)

	again, err := f.handler.ResolveIngredients(context.Background(), f.item.ID, dto.ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, offered, again)
}

func TestResolveGroupPriceAndMalformedVolumePrices(t *testing.T) {
	f := newFixture(t)
	a := f.ingredient("Ginger", "1", true)
	b := f.ingredient("Mint", "1.5", true)
	group := f.store.AddGroup(models.IngredientGroup{
		Name:  "Herbs",
		Items: []models.IngredientGroupItem{{IngredientID: a.ID, PriceOverride: nullDec("0.7")}},
	})
	f.store.AddCategoryConfig(models.CategoryIngredientConfig{
		CategoryID: f.category.ID, IngredientID: a.ID, IngredientGroupID: &group.ID,
	})
	f.store.AddCategoryConfig(models.CategoryIngredientConfig{
		CategoryID: f.category.ID, IngredientID: b.ID, VolumePrices: datatypes.JSON(`{"0.5L": oops`),
	})

	offered, err := f.handler.ResolveIngredients(context.Background(), f.item.ID, dto.ResolveOptions{})
	require.NoError(t, err)
	require.Len(t, offered, 2)

	byID := map[int64]dto.OfferedIngredient{}
	for _, o := range offered {
		byID[o.ID] = o
	}
	assert.True(t, byID[a.ID].Price.Equal(dec("0.7")))
	assert.Nil(t, byID[b.ID].VolumePrices)
	assert.True(t, byID[b.ID].Price.Equal(dec("1.5")))
}

func TestResolveMissingItem(t *testing.T) {
	f := newFixture(t)
	_, err := f.handler.ResolveIngredients(context.Background(), 9999, dto.ResolveOptions{})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestReplaceItemConfigEmptyMeansInheritance(t *testing.T) {
	f := newFixture(t)
	a := f.ingredient("Apple", "1", true)
	b := f.ingredient("Beet", "1", true)
	f.store.AddCategoryConfig(models.CategoryIngredientConfig{CategoryID: f.category.ID, IngredientID: a.ID})
	f.store.AddItemConfig(models.MenuItemIngredientConfig{MenuItemID: f.item.ID, IngredientID: b.ID})

	accepted, err := f.handler.ReplaceItemConfig(context.Background(), f.item.ID, []dto.ConfigEntry{})
	require.NoError(t, err)
	assert.Empty(t, accepted)

	offered, err := f.handler.ResolveIngredients(context.Background(), f.item.ID, dto.ResolveOptions{})
	require.NoError(t, err)
	require.Len(t, offered, 1)
	assert.Equal(t, a.ID, offered[0].ID)
	assert.Equal(t, dto.SourceCategory, offered[0].Source)
}

func TestReplaceCategoryConfigIsIdempotent(t *testing.T) {
	f := newFixture(t)
	a := f.ingredient("Apple", "1", true)
	b := f.ingredient("Beet", "2", true)
	payload := []dto.ConfigEntry{
		{IngredientID: &a.ID, SelectionType: models.SelectionSingle, PriceOverride: nullDec("4")},
		{IngredientID: &b.ID, VolumePrices: map[string]decimal.Decimal{"0.5L": dec("2.5")}},
	}

	_, err := f.handler.ReplaceCategoryConfig(context.Background(), f.category.ID, payload)
	require.NoError(t, err)
	first, err := f.handler.ResolveIngredients(context.Background(), f.item.ID, dto.ResolveOptions{})
	require.NoError(t, err)

	_, err = f.handler.ReplaceCategoryConfig(context.Background(), f.category.ID, payload)
	require.NoError(t, err)
	second, err := f.handler.ResolveIngredients(context.Background(), f.item.ID, dto.ResolveOptions{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, second, 2)
	assert.True(t, second[1].PriceFor("0.5L").Equal(dec("2.5")))
}

func TestReplaceConfigValidation(t *testing.T) {
	f := newFixture(t)
	a := f.ingredient("Apple", "1", true)
	missing := int64(4242)

	cases := map[string][]dto.ConfigEntry{
		"bad selection type": {{IngredientID: &a.ID, SelectionType: "several"}},
		"duplicate explicit": {{IngredientID: &a.ID}, {IngredientID: &a.ID}},
		"negative override":  {{IngredientID: &a.ID, PriceOverride: nullDec("-1")}},
		"no ids":             {{SelectionType: models.SelectionSingle}},
	}
	for name, entries := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.handler.ReplaceItemConfig(context.Background(), f.item.ID, entries)
			assert.True(t, apperrors.IsValidation(err), "%v", err)
		})
	}

	_, err := f.handler.ReplaceItemConfig(context.Background(), f.item.ID, []dto.ConfigEntry{{IngredientID: &missing}})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.handler.ReplaceItemConfig(context.Background(), missing, nil)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.handler.ReplaceCategoryConfig(context.Background(), f.category.ID, []dto.ConfigEntry{{IngredientGroupID: &missing}})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestReplaceConfigExpandsGroups(t *testing.T) {
	f := newFixture(t)
	a := f.ingredient("Almond", "1", true)
	b := f.ingredient("Cashew", "1", true)
	single := models.SelectionSingle
	group := f.store.AddGroup(models.IngredientGroup{
		Name:                 "Nuts",
		DefaultSelectionType: &single,
		Items: []models.IngredientGroupItem{
			{IngredientID: a.ID, SortOrder: 0},
			{IngredientID: b.ID, SortOrder: 1},
		},
	})

	accepted, err := f.handler.ReplaceCategoryConfig(context.Background(), f.category.ID, []dto.ConfigEntry{
		{IngredientGroupID: &group.ID},
		{IngredientID: &b.ID, SelectionType: models.SelectionMultiple, PriceOverride: nullDec("5")},
	})
	require.NoError(t, err)
	require.Len(t, accepted, 2)

	byID := map[int64]dto.ConfigEntry{}
	for _, e := range accepted {
		byID[*e.IngredientID] = e
	}
	assert.Equal(t, models.SelectionSingle, byID[a.ID].SelectionType)
	require.NotNil(t, byID[a.ID].IngredientGroupID)
	assert.Equal(t, group.ID, *byID[a.ID].IngredientGroupID)
	assert.Equal(t, models.SelectionMultiple, byID[b.ID].SelectionType, "explicit entry wins over group expansion")
	assert.True(t, byID[b.ID].PriceOverride.Decimal.Equal(dec("5")))

	stored, err := f.handler.GetCategoryConfig(context.Background(), f.category.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestFailedReplaceKeepsPriorConfig(t *testing.T) {
	f := newFixture(t)
	a := f.ingredient("Apple", "1", true)
	b := f.ingredient("Beet", "1", true)
	f.store.AddItemConfig(models.MenuItemIngredientConfig{MenuItemID: f.item.ID, IngredientID: a.ID})

	before, err := f.cache.Version(context.Background())
	require.NoError(t, err)

	f.store.FailOn("ReplaceItemConfigs", errors.New("insert failed"))
	_, err = f.handler.ReplaceItemConfig(context.Background(), f.item.ID, []dto.ConfigEntry{{IngredientID: &b.ID}})
	require.Error(t, err)
	assert.True(t, apperrors.IsStore(err))
	f.store.FailOn("ReplaceItemConfigs", nil)

	offered, err := f.handler.ResolveIngredients(context.Background(), f.item.ID, dto.ResolveOptions{})
	require.NoError(t, err)
	require.Len(t, offered, 1)
	assert.Equal(t, a.ID, offered[0].ID)

	after, err := f.cache.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed writes do not bump the version")
}

func TestWritesInvalidateMenuBeforeReturning(t *testing.T) {
	f := newFixture(t)
	a := f.ingredient("Apple", "1", true)
	ctx := context.Background()

	menu, err := f.handler.GetMenu(ctx)
	require.NoError(t, err)
	require.Len(t, menu.Categories, 1)
	require.Len(t, menu.Categories[0].Items, 1)
	assert.Empty(t, menu.Categories[0].Items[0].Ingredients)
	v1 := menu.Version

	_, err = f.handler.ReplaceCategoryConfig(ctx, f.category.ID, []dto.ConfigEntry{{IngredientID: &a.ID}})
	require.NoError(t, err)

	menu, err = f.handler.GetMenu(ctx)
	require.NoError(t, err)
	require.Len(t, menu.Categories[0].Items[0].Ingredients, 1)
	assert.Greater(t, menu.Version, v1)

	_, err = f.handler.ReplaceCategoryVolumes(ctx, f.category.ID, []dto.CategoryVolume{{Volume: "0.3L", IsDefault: true}, {Volume: "0.5L"}})
	require.NoError(t, err)

	menu, err = f.handler.GetMenu(ctx)
	require.NoError(t, err)
	vols := menu.Categories[0].Items[0].Volumes
	require.Len(t, vols, 2)
	assert.True(t, vols[0].Price.Equal(dec("10")), "category volumes are priced at the item price")
}

func TestGetMenuServesCachedSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.handler.GetMenu(ctx)
	require.NoError(t, err)
	_, err = f.handler.GetMenu(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.Calls("ListActiveCategories"))
}

func TestGetMenuPropagatesRebuildFailure(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("ListAvailableItems", errors.New("connection refused"))

	menu, err := f.handler.GetMenu(context.Background())
	assert.Nil(t, menu)
	assert.True(t, apperrors.IsStore(err))
}

func TestGetMenuHidesInactiveCategoriesAndUnavailableItems(t *testing.T) {
	f := newFixture(t)
	hidden := f.store.AddCategory(models.MenuCategory{Name: "Seasonal", IsActive: false})
	f.store.AddMenuItem(models.MenuItem{CategoryID: hidden.ID, Name: "Pumpkin", Price: dec("7"), IsAvailable: true})
	f.store.AddMenuItem(models.MenuItem{CategoryID: f.category.ID, Name: "Sold out", Price: dec("7"), IsAvailable: false})

	menu, err := f.handler.GetMenu(context.Background())
	require.NoError(t, err)
	require.Len(t, menu.Categories, 1)
	require.Len(t, menu.Categories[0].Items, 1)
	assert.Equal(t, "Berry Blast", menu.Categories[0].Items[0].Name)
}

type brokenCache struct {
	*menucache.MemoryCache
	mu          sync.Mutex
	invalidated int
}

func (c *brokenCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return errors.New("redis: connection pool timeout")
}

func TestConsistencyWarningDoesNotFailWrite(t *testing.T) {
	f := newFixture(t)
	cache := &brokenCache{MemoryCache: menucache.NewMemoryCache(0)}
	h := NewMenuHandler(f.store.Repositories(), cache, logging.Discard())
	a := f.ingredient("Apple", "1", true)

	accepted, err := h.ReplaceItemConfig(context.Background(), f.item.ID, []dto.ConfigEntry{{IngredientID: &a.ID}})
	require.NoError(t, err)
	assert.Len(t, accepted, 1)
	assert.Equal(t, 1, cache.invalidated)
}

func TestQuoteLineItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	discount := dec("10")
	_, err := f.handler.UpdateMenuItem(ctx, f.item.ID, dto.MenuItemUpdate{DiscountPercent: &discount})
	require.NoError(t, err)

	a := f.ingredient("Apple", "2", true)
	f.store.AddCategoryConfig(models.CategoryIngredientConfig{CategoryID: f.category.ID, IngredientID: a.ID})

	quote, err := f.handler.QuoteLineItem(ctx, f.item.ID, dto.Selection{
		Quantity:    2,
		Ingredients: []dto.SelectedIngredient{{ID: a.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.True(t, quote.LineTotal.Equal(dec("22")), quote.LineTotal.String())

	_, err = f.handler.QuoteLineItem(ctx, f.item.ID, dto.Selection{
		Quantity:    1,
		Ingredients: []dto.SelectedIngredient{{ID: 777, Quantity: 1}},
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetModalData(t *testing.T) {
	f := newFixture(t)
	a := f.ingredient("Apple", "1", true)
	f.store.AddItemConfig(models.MenuItemIngredientConfig{MenuItemID: f.item.ID, IngredientID: a.ID})
	f.store.AddItemVolume(models.MenuItemVolume{MenuItemID: f.item.ID, Volume: "0.5L", Price: dec("12"), SortOrder: 1})
	f.store.AddItemVolume(models.MenuItemVolume{MenuItemID: f.item.ID, Volume: "0.3L", Price: dec("10"), IsDefault: true})
	f.store.AddCategoryVolume(models.CategoryVolume{CategoryID: f.category.ID, Volume: "1L"})
	f.store.AddAdditionalItem(models.AdditionalItem{MenuItemID: f.item.ID, Name: "Cookie", Price: dec("3"), IsAvailable: true})
	f.store.AddAdditionalItem(models.AdditionalItem{MenuItemID: f.item.ID, Name: "Muffin", Price: dec("4"), IsAvailable: false})

	data, err := f.handler.GetModalData(context.Background(), f.item.ID)
	require.NoError(t, err)
	require.Len(t, data.Ingredients, 1)
	require.Len(t, data.Volumes, 2)
	assert.Equal(t, "0.3L", data.Volumes[0].Volume)
	require.Len(t, data.AdditionalItems, 1)
	assert.Equal(t, "Cookie", data.AdditionalItems[0].Name)
}

func TestVolumeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.handler.ReplaceCategoryVolumes(ctx, f.category.ID, []dto.CategoryVolume{
		{Volume: "0.3L", IsDefault: true}, {Volume: "0.5L", IsDefault: true},
	})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.handler.ReplaceItemVolumes(ctx, f.item.ID, []dto.Volume{
		{Volume: "0.3L", Price: dec("1")}, {Volume: "0.3L", Price: dec("2")},
	})
	assert.True(t, apperrors.IsValidation(err))
}

func TestIngredientCatalogLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.handler.CreateIngredient(ctx, dto.IngredientInput{Name: " Papaya ", Price: dec("1.2")})
	require.NoError(t, err)
	assert.Equal(t, "Papaya", created.Name)
	assert.Equal(t, models.DefaultIngredientCategory, created.IngredientCategory)
	assert.True(t, created.IsAvailable)

	off := false
	updated, err := f.handler.UpdateIngredient(ctx, created.ID, dto.IngredientInput{Name: "Papaya", Price: dec("1.4"), IsAvailable: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)

	active, err := f.handler.ListIngredients(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := f.handler.ListIngredients(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	f.store.AddCategoryConfig(models.CategoryIngredientConfig{CategoryID: f.category.ID, IngredientID: created.ID})
	require.NoError(t, f.handler.DeleteIngredient(ctx, created.ID))

	rows, err := f.handler.GetCategoryConfig(ctx, f.category.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.True(t, apperrors.IsNotFound(f.handler.DeleteIngredient(ctx, created.ID)))

	_, err = f.handler.CreateIngredient(ctx, dto.IngredientInput{Name: "Bad", Price: dec("-1")})
	assert.True(t, apperrors.IsValidation(err))
}

func TestGroupMembersFeedResolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.ingredient("Oat milk", "1", true)

	group, err := f.handler.CreateGroup(ctx, dto.GroupInput{Name: "Milks"})
	require.NoError(t, err)
	_, err = f.handler.ReplaceCategoryConfig(ctx, f.category.ID, []dto.ConfigEntry{{IngredientID: &a.ID, IngredientGroupID: &group.ID}})
	require.NoError(t, err)

	_, err = f.handler.ReplaceGroupMembers(ctx, group.ID, []dto.GroupMember{{IngredientID: a.ID, PriceOverride: nullDec("0.5")}})
	require.NoError(t, err)

	offered, err := f.handler.ResolveIngredients(ctx, f.item.ID, dto.ResolveOptions{})
	require.NoError(t, err)
	require.Len(t, offered, 1)
	assert.True(t, offered[0].Price.Equal(dec("0.5")))

	_, err = f.handler.ReplaceGroupMembers(ctx, group.ID, []dto.GroupMember{{IngredientID: 31337}})
	assert.True(t, apperrors.IsNotFound(err))

	groups, err := f.handler.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Members, 1)
}

func TestDeleteMenuItemRemovesItFromMenu(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.handler.GetMenu(ctx)
	require.NoError(t, err)
	require.NoError(t, f.handler.DeleteMenuItem(ctx, f.item.ID))

	menu, err := f.handler.GetMenu(ctx)
	require.NoError(t, err)
	assert.Empty(t, menu.Categories[0].Items)
	assert.True(t, apperrors.IsNotFound(f.handler.DeleteMenuItem(ctx, f.item.ID)))
}

// gatedConfigs holds the first armed ListCategoryConfigRows call open after it
// has read its rows, so a write can commit while a rebuild is in flight.
type gatedConfigs struct {
	repository.ConfigRepository
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedConfigs) ListCategoryConfigRows(ctx context.Context, categoryID int64) ([]repository.ConfigRow, error) {
	rows, err := g.ConfigRepository.ListCategoryConfigRows(ctx, categoryID)
	if g.armed.CompareAndSwap(true, false) {
		close(g.entered)
		<-g.release
	}
	return rows, err
}

func TestGetMenuDoesNotCacheRebuildOverlappingAWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.ingredient("Apple", "1", true)

	repos := f.store.Repositories()
	gated := &gatedConfigs{
		ConfigRepository: repos.Configs,
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
	gated.armed.Store(true)
	repos.Configs = gated
	h := NewMenuHandler(repos, f.cache, logging.Discard())

	done := make(chan error, 1)
	go func() {
		_, err := h.GetMenu(ctx)
		done <- err
	}()
	<-gated.entered

	_, err := h.ReplaceCategoryConfig(ctx, f.category.ID, []dto.ConfigEntry{{IngredientID: &a.ID}})
	require.NoError(t, err)
	close(gated.release)
	require.NoError(t, <-done)

	menu, err := h.GetMenu(ctx)
	require.NoError(t, err)
	require.Len(t, menu.Categories, 1)
	require.Len(t, menu.Categories[0].Items, 1)
	assert.Len(t, menu.Categories[0].Items[0].Ingredients, 1)
}

type versionlessCache struct {
	*menucache.MemoryCache
	down atomic.Bool
}

func (c *versionlessCache) Version(ctx context.Context) (int64, error) {
	if c.down.Load() {
		return 0, errors.New("redis: connection refused")
	}
	return c.MemoryCache.Version(ctx)
}

func TestGetMenuSurvivesVersionOutage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := &versionlessCache{MemoryCache: menucache.NewMemoryCache(time.Minute)}
	h := NewMenuHandler(f.store.Repositories(), cache, logging.Discard())

	first, err := h.GetMenu(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx))

	cache.down.Store(true)
	menu, err := h.GetMenu(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Version, menu.Version)
	require.Len(t, menu.Categories, 1)
	assert.Equal(t, "Berry Blast", menu.Categories[0].Items[0].Name)
}
