package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"juicebar-system/internal/gateway/middleware"
	"juicebar-system/internal/i18n"
	"juicebar-system/internal/services/menu/dto"
)

// MenuService is the menu engine as the HTTP layer sees it.
type MenuService interface {
	GetMenu(ctx context.Context) (*dto.MenuSnapshot, error)
	CacheVersion(ctx context.Context) (int64, error)
	GetModalData(ctx context.Context, itemID int64) (*dto.ModalData, error)
	QuoteLineItem(ctx context.Context, itemID int64, sel dto.Selection) (*dto.Quote, error)
	ResolveIngredients(ctx context.Context, itemID int64, opts dto.ResolveOptions) ([]dto.OfferedIngredient, error)

	GetCategoryConfig(ctx context.Context, categoryID int64) ([]dto.ConfigEntry, error)
	GetItemConfig(ctx context.Context, itemID int64) ([]dto.ConfigEntry, error)
	ReplaceCategoryConfig(ctx context.Context, categoryID int64, entries []dto.ConfigEntry) ([]dto.ConfigEntry, error)
	ReplaceItemConfig(ctx context.Context, itemID int64, entries []dto.ConfigEntry) ([]dto.ConfigEntry, error)

	ReplaceCategoryVolumes(ctx context.Context, categoryID int64, volumes []dto.CategoryVolume) ([]dto.CategoryVolume, error)
	ReplaceItemVolumes(ctx context.Context, itemID int64, volumes []dto.Volume) ([]dto.Volume, error)
	UpdateMenuItem(ctx context.Context, itemID int64, in dto.MenuItemUpdate) (*dto.MenuItem, error)
	DeleteMenuItem(ctx context.Context, itemID int64) error

	ListIngredients(ctx context.Context, includeInactive bool) ([]dto.Ingredient, error)
	CreateIngredient(ctx context.Context, in dto.IngredientInput) (*dto.Ingredient, error)
	UpdateIngredient(ctx context.Context, id int64, in dto.IngredientInput) (*dto.Ingredient, error)
	DeleteIngredient(ctx context.Context, id int64) error

	ListGroups(ctx context.Context) ([]dto.Group, error)
	CreateGroup(ctx context.Context, in dto.GroupInput) (*dto.Group, error)
	ReplaceGroupMembers(ctx context.Context, groupID int64, members []dto.GroupMember) (*dto.Group, error)
}

type MenuHTTPHandler struct {
	menu       MenuService
	translator i18n.Translator
	log        *logrus.Logger
}

func NewMenuHTTPHandler(menu MenuService, translator i18n.Translator, log *logrus.Logger) *MenuHTTPHandler {
	if translator == nil {
		translator = i18n.Identity{}
	}
	return &MenuHTTPHandler{
		menu:       menu,
		translator: translator,
		log:        log,
	}
}

type ConfigsRequest struct {
	Configs []dto.ConfigEntry `json:"configs" binding:"required"`
}

type CategoryVolumesRequest struct {
	Volumes []dto.CategoryVolume `json:"volumes" binding:"required,dive"`
}

type ItemVolumesRequest struct {
	Volumes []dto.Volume `json:"volumes" binding:"required"`
}

type GroupMembersRequest struct {
	Members []dto.GroupMember `json:"members" binding:"required"`
}

type QuoteRequest struct {
	Volume          string                   `json:"volume"`
	Quantity        *int                     `json:"quantity"`
	Ingredients     []dto.SelectedIngredient `json:"ingredients"`
	AdditionalItems []dto.SelectedAdditional `json:"additional_items"`
}

// --- Storefront ---

func (h *MenuHTTPHandler) GetMenu(c *gin.Context) {
	snapshot, err := h.menu.GetMenu(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.Header(middleware.MenuVersionHeader, strconv.FormatInt(snapshot.Version, 10))
	c.JSON(http.StatusOK, successResponse("menu retrieved", i18n.Snapshot(h.translator, c.Query("lang"), snapshot)))
}

func (h *MenuHTTPHandler) GetCacheVersion(c *gin.Context) {
	version, err := h.menu.CacheVersion(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"version": version})
}

func (h *MenuHTTPHandler) GetModalData(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	data, err := h.menu.GetModalData(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, i18n.Modal(h.translator, c.Query("lang"), data))
}

func (h *MenuHTTPHandler) Quote(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}
	sel := dto.Selection{
		Volume:          req.Volume,
		Quantity:        1,
		Ingredients:     req.Ingredients,
		AdditionalItems: req.AdditionalItems,
	}
	if req.Quantity != nil {
		sel.Quantity = *req.Quantity
	}

	quote, err := h.menu.QuoteLineItem(c.Request.Context(), id, sel)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("quote computed", quote))
}

// --- Admin: ingredient configuration ---

func (h *MenuHTTPHandler) GetCategoryConfigs(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	configs, err := h.menu.GetCategoryConfig(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("category ingredient configs retrieved", gin.H{"configs": configs}))
}

func (h *MenuHTTPHandler) ReplaceCategoryConfigs(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	var req ConfigsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	accepted, err := h.menu.ReplaceCategoryConfig(c.Request.Context(), id, req.Configs)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("category ingredient configs replaced", gin.H{"configs": accepted}))
}

func (h *MenuHTTPHandler) GetItemConfigs(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	configs, err := h.menu.GetItemConfig(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("item ingredient configs retrieved", gin.H{"configs": configs}))
}

func (h *MenuHTTPHandler) ReplaceItemConfigs(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	var req ConfigsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	accepted, err := h.menu.ReplaceItemConfig(c.Request.Context(), id, req.Configs)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("item ingredient configs replaced", gin.H{"configs": accepted}))
}

func (h *MenuHTTPHandler) ListItemIngredients(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	opts := dto.ResolveOptions{IncludeInactive: parseBoolQuery(c, "include_inactive")}

	offered, err := h.menu.ResolveIngredients(c.Request.Context(), id, opts)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successWithMetaResponse("ingredients resolved", offered, gin.H{"count": len(offered)}))
}

// --- Admin: volumes and items ---

func (h *MenuHTTPHandler) ReplaceCategoryVolumes(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	var req CategoryVolumesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	volumes, err := h.menu.ReplaceCategoryVolumes(c.Request.Context(), id, req.Volumes)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("category volumes replaced", gin.H{"volumes": volumes}))
}

func (h *MenuHTTPHandler) ReplaceItemVolumes(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	var req ItemVolumesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	volumes, err := h.menu.ReplaceItemVolumes(c.Request.Context(), id, req.Volumes)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("item volumes replaced", gin.H{"volumes": volumes}))
}

func (h *MenuHTTPHandler) UpdateMenuItem(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	var req dto.MenuItemUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	item, err := h.menu.UpdateMenuItem(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("menu item updated", item))
}

func (h *MenuHTTPHandler) DeleteMenuItem(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.menu.DeleteMenuItem(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("menu item deleted", nil))
}

// --- Admin: ingredient catalog ---

func (h *MenuHTTPHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.menu.ListIngredients(c.Request.Context(), parseBoolQuery(c, "include_inactive"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successWithMetaResponse("ingredients retrieved", ingredients, gin.H{"count": len(ingredients)}))
}

func (h *MenuHTTPHandler) CreateIngredient(c *gin.Context) {
	var req dto.IngredientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	ingredient, err := h.menu.CreateIngredient(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("ingredient created", ingredient))
}

func (h *MenuHTTPHandler) UpdateIngredient(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	var req dto.IngredientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	ingredient, err := h.menu.UpdateIngredient(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("ingredient updated", ingredient))
}

func (h *MenuHTTPHandler) DeleteIngredient(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.menu.DeleteIngredient(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("ingredient deleted", nil))
}

// --- Admin: ingredient groups ---

func (h *MenuHTTPHandler) ListGroups(c *gin.Context) {
	groups, err := h.menu.ListGroups(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("ingredient groups retrieved", groups))
}

func (h *MenuHTTPHandler) CreateGroup(c *gin.Context) {
	var req dto.GroupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	group, err := h.menu.CreateGroup(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("ingredient group created", group))
}

func (h *MenuHTTPHandler) ReplaceGroupMembers(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	var req GroupMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request body: "+err.Error()))
		return
	}

	group, err := h.menu.ReplaceGroupMembers(c.Request.Context(), id, req.Members)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("ingredient group members replaced", group))
}
