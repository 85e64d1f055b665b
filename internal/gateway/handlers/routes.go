package handlers

import "github.com/gin-gonic/gin"

// RegisterMenuRoutes mounts the storefront routes publicly and the
// configuration routes behind adminAuth.
func RegisterMenuRoutes(r gin.IRouter, h *MenuHTTPHandler, adminAuth gin.HandlerFunc) {
	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		public.GET("/menu", h.GetMenu)
		public.GET("/menu-cache-version", h.GetCacheVersion)
		public.GET("/menu-items/:id/modal-data", h.GetModalData)
		public.POST("/menu-items/:id/quote", h.Quote)
	}

	// --- Protected API Group ---
	admin := r.Group("/api/v1")
	admin.Use(adminAuth)
	{
		categories := admin.Group("/menu-categories")
		{
			categories.GET("/:id/ingredient-configs", h.GetCategoryConfigs)
			categories.PUT("/:id/ingredient-configs", h.ReplaceCategoryConfigs)
			categories.PUT("/:id/volumes", h.ReplaceCategoryVolumes)
		}

		items := admin.Group("/menu-items")
		{
			items.GET("/:id/ingredient-configs", h.GetItemConfigs)
			items.PUT("/:id/ingredient-configs", h.ReplaceItemConfigs)
			items.GET("/:id/ingredients", h.ListItemIngredients)
			items.PUT("/:id/volumes", h.ReplaceItemVolumes)
			items.PUT("/:id", h.UpdateMenuItem)
			items.DELETE("/:id", h.DeleteMenuItem)
		}

		ingredients := admin.Group("/ingredients")
		{
			ingredients.GET("", h.ListIngredients)
			ingredients.POST("", h.CreateIngredient)
			ingredients.PUT("/:id", h.UpdateIngredient)
			ingredients.DELETE("/:id", h.DeleteIngredient)
		}

		groups := admin.Group("/ingredient-groups")
		{
			groups.GET("", h.ListGroups)
			groups.POST("", h.CreateGroup)
			groups.PUT("/:id/members", h.ReplaceGroupMembers)
		}
	}
}
