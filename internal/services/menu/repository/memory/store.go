// Package memory provides an in-memory implementation of the menu repositories
// used by the handler and gateway tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/database/models"
	"juicebar-system/internal/services/menu/dto"
	"juicebar-system/internal/services/menu/repository"
)

var (
	_ repository.MenuRepository       = (*Store)(nil)
	_ repository.IngredientRepository = (*Store)(nil)
	_ repository.GroupRepository      = (*Store)(nil)
	_ repository.ConfigRepository     = (*Store)(nil)
)

type memoryState struct {
	categories      map[int64]models.MenuCategory
	items           map[int64]models.MenuItem
	itemVolumes     map[int64][]models.MenuItemVolume
	categoryVolumes map[int64][]models.CategoryVolume
	additional      map[int64][]models.AdditionalItem
	ingredients     map[int64]models.CustomIngredient
	groups          map[int64]models.IngredientGroup
	members         map[int64][]models.IngredientGroupItem
	categoryConfigs map[int64][]models.CategoryIngredientConfig
	itemConfigs     map[int64][]models.MenuItemIngredientConfig
}

func newMemoryState() memoryState {
	return memoryState{
		categories:      make(map[int64]models.MenuCategory),
		items:           make(map[int64]models.MenuItem),
		itemVolumes:     make(map[int64][]models.MenuItemVolume),
		categoryVolumes: make(map[int64][]models.CategoryVolume),
		additional:      make(map[int64][]models.AdditionalItem),
		ingredients:     make(map[int64]models.CustomIngredient),
		groups:          make(map[int64]models.IngredientGroup),
		members:         make(map[int64][]models.IngredientGroupItem),
		categoryConfigs: make(map[int64][]models.CategoryIngredientConfig),
		itemConfigs:     make(map[int64][]models.MenuItemIngredientConfig),
	}
}

// Store keeps every menu table in maps guarded by one RWMutex. Replace
// operations swap the whole scope under the write lock, so readers never
// observe a half-written scope.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	nextID int64
	fail   map[string]error
	calls  map[string]int
}

func NewStore() *Store {
	return &Store{
		state: newMemoryState(),
		fail:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{Menu: s, Ingredients: s, Groups: s, Configs: s}
}

// FailOn makes every later call of the named method return err wrapped as a
// store error. A nil err clears the injection.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, method)
		return
	}
	s.fail[method] = err
}

// Calls reports how many times the named method was invoked.
func (s *Store) Calls(method string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[method]
}

// enter records the call and returns the injected failure, if any. Callers
// must hold s.mu for writing.
func (s *Store) enter(method string) error {
	s.calls[method]++
	if err, ok := s.fail[method]; ok {
		return apperrors.Store(method, err)
	}
	return nil
}

func (s *Store) id(explicit int64) int64 {
	if explicit > s.nextID {
		s.nextID = explicit
	}
	if explicit != 0 {
		return explicit
	}
	s.nextID++
	return s.nextID
}

// Seed helpers. They assign ids when the caller leaves them zero and return
// the stored value.

func (s *Store) AddCategory(c models.MenuCategory) models.MenuCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id(c.ID)
	c.Volumes, c.IngredientConfigs, c.Items = nil, nil, nil
	s.state.categories[c.ID] = c
	return c
}

func (s *Store) AddMenuItem(it models.MenuItem) models.MenuItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	it.ID = s.id(it.ID)
	it.Volumes, it.AdditionalItems, it.IngredientConfigs = nil, nil, nil
	s.state.items[it.ID] = it
	return it
}

func (s *Store) AddItemVolume(v models.MenuItemVolume) models.MenuItemVolume {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.id(v.ID)
	s.state.itemVolumes[v.MenuItemID] = append(s.state.itemVolumes[v.MenuItemID], v)
	return v
}

func (s *Store) AddCategoryVolume(v models.CategoryVolume) models.CategoryVolume {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.id(v.ID)
	s.state.categoryVolumes[v.CategoryID] = append(s.state.categoryVolumes[v.CategoryID], v)
	return v
}

func (s *Store) AddAdditionalItem(a models.AdditionalItem) models.AdditionalItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id(a.ID)
	s.state.additional[a.MenuItemID] = append(s.state.additional[a.MenuItemID], a)
	return a
}

func (s *Store) AddIngredient(ing models.CustomIngredient) models.CustomIngredient {
	s.mu.Lock()
	defer s.mu.Unlock()
	ing.ID = s.id(ing.ID)
	if ing.IngredientCategory == "" {
		ing.IngredientCategory = models.DefaultIngredientCategory
	}
	s.state.ingredients[ing.ID] = ing
	return ing
}

func (s *Store) AddGroup(g models.IngredientGroup) models.IngredientGroup {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.id(g.ID)
	members := g.Items
	g.Items = nil
	s.state.groups[g.ID] = g
	for _, m := range members {
		m.ID = s.id(m.ID)
		m.GroupID = g.ID
		m.Ingredient = nil
		s.state.members[g.ID] = append(s.state.members[g.ID], m)
	}
	return g
}

func (s *Store) AddItemConfig(c models.MenuItemIngredientConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id(c.ID)
	c.Ingredient = nil
	s.state.itemConfigs[c.MenuItemID] = append(s.state.itemConfigs[c.MenuItemID], c)
}

func (s *Store) AddCategoryConfig(c models.CategoryIngredientConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id(c.ID)
	c.Ingredient = nil
	s.state.categoryConfigs[c.CategoryID] = append(s.state.categoryConfigs[c.CategoryID], c)
}

// SetIngredientAvailable flips availability without going through the catalog.
func (s *Store) SetIngredientAvailable(id int64, available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ing, ok := s.state.ingredients[id]; ok {
		ing.IsAvailable = models.Availability(available)
		s.state.ingredients[id] = ing
	}
}

func bySortThenID[T any](rows []T, key func(T) (int32, int64)) {
	sort.SliceStable(rows, func(i, j int) bool {
		si, ii := key(rows[i])
		sj, ij := key(rows[j])
		if si != sj {
			return si < sj
		}
		return ii < ij
	})
}

// Menu

func (s *Store) GetMenuItem(_ context.Context, id int64) (*models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetMenuItem"); err != nil {
		return nil, err
	}
	it, ok := s.state.items[id]
	if !ok {
		return nil, apperrors.NotFound("get menu item", "menu item %d not found", id)
	}
	return &it, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (*models.MenuCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetCategory"); err != nil {
		return nil, err
	}
	c, ok := s.state.categories[id]
	if !ok {
		return nil, apperrors.NotFound("get menu category", "menu category %d not found", id)
	}
	return &c, nil
}

func (s *Store) ListActiveCategories(_ context.Context) ([]models.MenuCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListActiveCategories"); err != nil {
		return nil, err
	}
	var out []models.MenuCategory
	for _, c := range s.state.categories {
		if c.IsActive.Bool() {
			out = append(out, c)
		}
	}
	bySortThenID(out, func(c models.MenuCategory) (int32, int64) { return c.SortOrder, c.ID })
	return out, nil
}

func (s *Store) ListAvailableItems(_ context.Context) ([]models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListAvailableItems"); err != nil {
		return nil, err
	}
	var out []models.MenuItem
	for _, it := range s.state.items {
		if !it.IsAvailable.Bool() {
			continue
		}
		it.Volumes = append([]models.MenuItemVolume(nil), s.state.itemVolumes[it.ID]...)
		bySortThenID(it.Volumes, func(v models.MenuItemVolume) (int32, int64) { return v.SortOrder, v.ID })
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ListItemVolumes(_ context.Context, itemID int64) ([]models.MenuItemVolume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListItemVolumes"); err != nil {
		return nil, err
	}
	out := append([]models.MenuItemVolume(nil), s.state.itemVolumes[itemID]...)
	bySortThenID(out, func(v models.MenuItemVolume) (int32, int64) { return v.SortOrder, v.ID })
	return out, nil
}

func (s *Store) ListCategoryVolumes(_ context.Context, categoryID int64) ([]models.CategoryVolume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListCategoryVolumes"); err != nil {
		return nil, err
	}
	out := append([]models.CategoryVolume(nil), s.state.categoryVolumes[categoryID]...)
	bySortThenID(out, func(v models.CategoryVolume) (int32, int64) { return v.SortOrder, v.ID })
	return out, nil
}

func (s *Store) ListAdditionalItems(_ context.Context, itemID int64) ([]models.AdditionalItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListAdditionalItems"); err != nil {
		return nil, err
	}
	out := append([]models.AdditionalItem(nil), s.state.additional[itemID]...)
	bySortThenID(out, func(a models.AdditionalItem) (int32, int64) { return a.SortOrder, a.ID })
	return out, nil
}

func (s *Store) ReplaceCategoryVolumes(_ context.Context, categoryID int64, volumes []models.CategoryVolume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ReplaceCategoryVolumes"); err != nil {
		return err
	}
	next := make([]models.CategoryVolume, len(volumes))
	for i, v := range volumes {
		v.ID = s.id(0)
		v.CategoryID = categoryID
		next[i] = v
		volumes[i] = v
	}
	s.state.categoryVolumes[categoryID] = next
	return nil
}

func (s *Store) ReplaceItemVolumes(_ context.Context, itemID int64, volumes []models.MenuItemVolume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ReplaceItemVolumes"); err != nil {
		return err
	}
	next := make([]models.MenuItemVolume, len(volumes))
	for i, v := range volumes {
		v.ID = s.id(0)
		v.MenuItemID = itemID
		next[i] = v
		volumes[i] = v
	}
	s.state.itemVolumes[itemID] = next
	return nil
}

func (s *Store) UpdateMenuItem(_ context.Context, item *models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateMenuItem"); err != nil {
		return err
	}
	if _, ok := s.state.items[item.ID]; !ok {
		return apperrors.NotFound("update menu item", "menu item %d not found", item.ID)
	}
	stored := *item
	stored.Volumes, stored.AdditionalItems, stored.IngredientConfigs = nil, nil, nil
	s.state.items[item.ID] = stored
	return nil
}

func (s *Store) DeleteMenuItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteMenuItem"); err != nil {
		return err
	}
	if _, ok := s.state.items[id]; !ok {
		return apperrors.NotFound("delete menu item", "menu item %d not found", id)
	}
	delete(s.state.items, id)
	delete(s.state.itemVolumes, id)
	delete(s.state.additional, id)
	delete(s.state.itemConfigs, id)
	return nil
}

// Ingredients

func (s *Store) ListIngredients(_ context.Context, includeInactive bool) ([]models.CustomIngredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListIngredients"); err != nil {
		return nil, err
	}
	var out []models.CustomIngredient
	for _, ing := range s.state.ingredients {
		if includeInactive || ing.IsAvailable.Bool() {
			out = append(out, ing)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
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
	return out, nil
}

func (s *Store) GetIngredient(_ context.Context, id int64) (*models.CustomIngredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetIngredient"); err != nil {
		return nil, err
	}
	ing, ok := s.state.ingredients[id]
	if !ok {
		return nil, apperrors.NotFound("get ingredient", "ingredient %d not found", id)
	}
	return &ing, nil
}

func (s *Store) GetIngredientsByIDs(_ context.Context, ids []int64) ([]models.CustomIngredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetIngredientsByIDs"); err != nil {
		return nil, err
	}
	var out []models.CustomIngredient
	for _, id := range ids {
		if ing, ok := s.state.ingredients[id]; ok {
			out = append(out, ing)
		}
	}
	return out, nil
}

func (s *Store) CreateIngredient(_ context.Context, ingredient *models.CustomIngredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateIngredient"); err != nil {
		return err
	}
	ingredient.ID = s.id(0)
	s.state.ingredients[ingredient.ID] = *ingredient
	return nil
}

func (s *Store) UpdateIngredient(_ context.Context, ingredient *models.CustomIngredient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateIngredient"); err != nil {
		return err
	}
	if _, ok := s.state.ingredients[ingredient.ID]; !ok {
		return apperrors.NotFound("update ingredient", "ingredient %d not found", ingredient.ID)
	}
	s.state.ingredients[ingredient.ID] = *ingredient
	return nil
}

func (s *Store) DeleteIngredient(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteIngredient"); err != nil {
		return err
	}
	if _, ok := s.state.ingredients[id]; !ok {
		return apperrors.NotFound("delete ingredient", "ingredient %d not found", id)
	}
	delete(s.state.ingredients, id)
	for scope, rows := range s.state.categoryConfigs {
		s.state.categoryConfigs[scope] = dropIngredient(rows, id, func(c models.CategoryIngredientConfig) int64 { return c.IngredientID })
	}
	for scope, rows := range s.state.itemConfigs {
		s.state.itemConfigs[scope] = dropIngredient(rows, id, func(c models.MenuItemIngredientConfig) int64 { return c.IngredientID })
	}
	for group, rows := range s.state.members {
		s.state.members[group] = dropIngredient(rows, id, func(m models.IngredientGroupItem) int64 { return m.IngredientID })
	}
	return nil
}

func dropIngredient[T any](rows []T, id int64, ingredientOf func(T) int64) []T {
	out := rows[:0]
	for _, r := range rows {
		if ingredientOf(r) != id {
			out = append(out, r)
		}
	}
	return out
}

// Groups

func (s *Store) groupWithMembers(g models.IngredientGroup) models.IngredientGroup {
	g.Items = append([]models.IngredientGroupItem(nil), s.state.members[g.ID]...)
	bySortThenID(g.Items, func(m models.IngredientGroupItem) (int32, int64) { return m.SortOrder, m.ID })
	return g
}

func (s *Store) ListGroups(_ context.Context) ([]models.IngredientGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListGroups"); err != nil {
		return nil, err
	}
	out := make([]models.IngredientGroup, 0, len(s.state.groups))
	for _, g := range s.state.groups {
		out = append(out, s.groupWithMembers(g))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetGroup(_ context.Context, id int64) (*models.IngredientGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetGroup"); err != nil {
		return nil, err
	}
	g, ok := s.state.groups[id]
	if !ok {
		return nil, apperrors.NotFound("get ingredient group", "ingredient group %d not found", id)
	}
	g = s.groupWithMembers(g)
	return &g, nil
}

func (s *Store) CreateGroup(_ context.Context, group *models.IngredientGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateGroup"); err != nil {
		return err
	}
	group.ID = s.id(0)
	stored := *group
	stored.Items = nil
	s.state.groups[group.ID] = stored
	return nil
}

func (s *Store) ReplaceGroupMembers(_ context.Context, groupID int64, members []models.IngredientGroupItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ReplaceGroupMembers"); err != nil {
		return err
	}
	next := make([]models.IngredientGroupItem, len(members))
	for i, m := range members {
		m.ID = s.id(0)
		m.GroupID = groupID
		m.Ingredient = nil
		next[i] = m
		members[i] = m
	}
	s.state.members[groupID] = next
	return nil
}

// Configs

func (s *Store) ListItemConfigRows(_ context.Context, itemID int64) ([]repository.ConfigRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListItemConfigRows"); err != nil {
		return nil, err
	}
	var rows []repository.ConfigRow
	for _, c := range s.state.itemConfigs[itemID] {
		if row, ok := s.configRow(dto.SourceMenuItem, c.IngredientID, c.SelectionType, c.IngredientGroupID, c.IsRequired); ok {
			row.PriceOverride = c.PriceOverride
			row.VolumePrices = c.VolumePrices
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *Store) ListCategoryConfigRows(_ context.Context, categoryID int64) ([]repository.ConfigRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListCategoryConfigRows"); err != nil {
		return nil, err
	}
	var rows []repository.ConfigRow
	for _, c := range s.state.categoryConfigs[categoryID] {
		if row, ok := s.configRow(dto.SourceCategory, c.IngredientID, c.SelectionType, c.IngredientGroupID, c.IsRequired); ok {
			row.PriceOverride = c.PriceOverride
			row.VolumePrices = c.VolumePrices
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *Store) configRow(source string, ingredientID int64, selection string, groupID *int64, required bool) (repository.ConfigRow, bool) {
	ing, ok := s.state.ingredients[ingredientID]
	if !ok {
		return repository.ConfigRow{}, false
	}
	row := repository.ConfigRow{
		Source:            source,
		IngredientID:      ingredientID,
		SelectionType:     selection,
		IngredientGroupID: groupID,
		IsRequired:        required,
		Ingredient:        ing,
	}
	if groupID != nil {
		for _, m := range s.state.members[*groupID] {
			if m.IngredientID == ingredientID {
				sortOrder := m.SortOrder
				row.GroupSortOrder = &sortOrder
				row.GroupPriceOverride = m.PriceOverride
				break
			}
		}
	}
	return row, true
}

func (s *Store) ReplaceCategoryConfigs(_ context.Context, categoryID int64, configs []models.CategoryIngredientConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ReplaceCategoryConfigs"); err != nil {
		return err
	}
	seen := make(map[int64]bool, len(configs))
	next := make([]models.CategoryIngredientConfig, len(configs))
	for i, c := range configs {
		if seen[c.IngredientID] {
			return apperrors.Store("replace category ingredient configs", errDuplicate(c.IngredientID))
		}
		seen[c.IngredientID] = true
		c.ID = s.id(0)
		c.CategoryID = categoryID
		c.Ingredient = nil
		next[i] = c
	}
	s.state.categoryConfigs[categoryID] = next
	return nil
}

func (s *Store) ReplaceItemConfigs(_ context.Context, itemID int64, configs []models.MenuItemIngredientConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ReplaceItemConfigs"); err != nil {
		return err
	}
	seen := make(map[int64]bool, len(configs))
	next := make([]models.MenuItemIngredientConfig, len(configs))
	for i, c := range configs {
		if seen[c.IngredientID] {
			return apperrors.Store("replace item ingredient configs", errDuplicate(c.IngredientID))
		}
		seen[c.IngredientID] = true
		c.ID = s.id(0)
		c.MenuItemID = itemID
		c.Ingredient = nil
		next[i] = c
	}
	s.state.itemConfigs[itemID] = next
	return nil
}

func errDuplicate(ingredientID int64) error {
	return fmt.Errorf("duplicate key value violates unique constraint: ingredient %d", ingredientID)
}
