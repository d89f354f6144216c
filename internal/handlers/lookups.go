package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carmarket-backend/internal/database"
	"carmarket-backend/internal/models"
)

type LookupsHandler struct {
	store *database.Store
}

func NewLookupsHandler(store *database.Store) *LookupsHandler {
	return &LookupsHandler{store: store}
}

// GetLookups returns every reference table in one payload: makes with
// their models, plus body types, colors, fuel types and gearbox types.
func (h *LookupsHandler) GetLookups(c *gin.Context) {
	ctx := c.Request.Context()

	makes, err := h.store.ListLookup(ctx, "makes")
	if err != nil {
		h.fail(c, err)
		return
	}
	carModels, err := h.store.ListModels(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	makeResponses := make([]models.MakeResponse, len(makes))
	for i, m := range makes {
		mr := models.MakeResponse{ID: m.ID.String(), Name: m.Name, Models: []models.LookupResponse{}}
		for _, cm := range carModels {
			if cm.MakeID == m.ID {
				mr.Models = append(mr.Models, models.LookupResponse{ID: cm.ID.String(), Name: cm.Name})
			}
		}
		makeResponses[i] = mr
	}

	resp := models.LookupsResponse{Makes: makeResponses}

	for _, t := range []struct {
		table string
		dst   *[]models.LookupResponse
	}{
		{"body_types", &resp.BodyTypes},
		{"colors", &resp.Colors},
		{"fuel_types", &resp.FuelTypes},
		{"gearbox_types", &resp.GearboxTypes},
	} {
		items, err := h.store.ListLookup(ctx, t.table)
		if err != nil {
			h.fail(c, err)
			return
		}
		out := make([]models.LookupResponse, len(items))
		for i, item := range items {
			out[i] = models.LookupResponse{ID: item.ID.String(), Name: item.Name}
		}
		*t.dst = out
	}

	c.JSON(http.StatusOK, resp)
}

func (h *LookupsHandler) fail(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "failed to load lookups",
		Message: err.Error(),
	})
}
