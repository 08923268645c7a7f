package handlers

import (
	"net/http"

	"github.com/AnshRaj112/catchlog-backend/internal/models"
)

// FishTypes lists the catalog for ?water_type=, or for every water type.
func (h *Handler) FishTypes(w http.ResponseWriter, r *http.Request) {
	local, _ := h.userSync(r)
	catalog := local.Catalog()

	if wt := models.WaterType(r.URL.Query().Get("water_type")); wt != "" {
		if !wt.Valid() {
			writeError(w, http.StatusBadRequest, "Water type must be fresh, salt or brackish")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"water_type": wt,
			"fish_types": catalog.ForWater(wt),
		})
		return
	}

	all := make(map[models.WaterType][]models.FishType)
	for _, wt := range []models.WaterType{models.WaterFresh, models.WaterSalt, models.WaterBrackish} {
		all[wt] = catalog.ForWater(wt)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"fish_types": all,
	})
}

func (h *Handler) ListCustomFishTypes(w http.ResponseWriter, r *http.Request) {
	local, _ := h.userSync(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"fish_types": local.CustomFishTypes(r.Context()),
	})
}

// CreateCustomFishType returns the existing entry for a duplicate name.
func (h *Handler) CreateCustomFishType(w http.ResponseWriter, r *http.Request) {
	var f models.CustomFishType
	if !decodeJSON(w, r, &f) {
		return
	}
	local, userID := h.userSync(r)
	f.CreatedBy = userID
	saved, err := local.AddCustomFishTypeWithSync(r.Context(), &f)
	if err != nil {
		writeErr(w, "create fish type", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":   true,
		"fish_type": saved,
	})
}
