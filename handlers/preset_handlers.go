package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"buffcomply/dashboard/internal/presets"
	"buffcomply/dashboard/internal/wizard"
	"buffcomply/dashboard/models"
	"buffcomply/dashboard/utils"
)

// PresetDetail is a preset together with the scrape form it pre-fills.
type PresetDetail struct {
	models.Preset
	Form wizard.ScrapeForm `json:"form"`
}

// ListPresets godoc
// @Summary List saved presets
// @Tags presets
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/presets [get]
func (h *ApplicationHandler) ListPresets(c *fiber.Ctx) error {
	all, err := h.Presets.Load(c.UserContext())
	if err != nil {
		h.Logger.WithError(err).Error("Error loading presets")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load presets")
	}
	if all == nil {
		all = []models.Preset{}
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, all)
}

// GetPreset godoc
// @Summary Get a preset
// @Tags presets
// @Produce json
// @Param name path string true "Preset name"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/presets/{name} [get]
func (h *ApplicationHandler) GetPreset(c *fiber.Ctx) error {
	preset, err := h.Presets.Get(c.UserContext(), pathParam(c, "name"))
	if errors.Is(err, presets.ErrPresetNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Preset not found")
	}
	if err != nil {
		h.Logger.WithError(err).Error("Error loading preset")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load presets")
	}

	form := wizard.ScrapeForm{
		Title:    preset.Name,
		URLs:     append([]string{}, preset.URLs...),
		Keywords: preset.AllKeywords(),
	}
	form.Normalize()
	return utils.RespondWithJSON(c, fiber.StatusOK, PresetDetail{Preset: preset, Form: form})
}

// SavePreset godoc
// @Summary Create or replace a preset
// @Description Saves the preset under the name in the path, replacing any preset with the same name.
// @Tags presets
// @Accept json
// @Produce json
// @Param name path string true "Preset name"
// @Param preset body models.Preset true "Preset"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/presets/{name} [put]
func (h *ApplicationHandler) SavePreset(c *fiber.Ctx) error {
	var preset models.Preset
	if err := c.BodyParser(&preset); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body: "+err.Error())
	}
	preset.Name = pathParam(c, "name")

	saved, err := h.Presets.Save(c.UserContext(), preset)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return utils.RespondWithErrors(c, fiber.StatusBadRequest, "Validation failed", utils.FormatValidationErrors(err))
		}
		h.Logger.WithError(err).WithField("preset", preset.Name).Error("Error saving preset")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to save preset")
	}
	return utils.RespondWithMessage(c, fiber.StatusOK, "Preset saved", saved)
}

// DeletePreset godoc
// @Summary Delete a preset
// @Tags presets
// @Produce json
// @Param name path string true "Preset name"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/presets/{name} [delete]
func (h *ApplicationHandler) DeletePreset(c *fiber.Ctx) error {
	name := pathParam(c, "name")
	err := h.Presets.Delete(c.UserContext(), name)
	if errors.Is(err, presets.ErrPresetNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Preset not found")
	}
	if err != nil {
		h.Logger.WithError(err).WithField("preset", name).Error("Error deleting preset")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to delete preset")
	}
	return utils.RespondWithMessage(c, fiber.StatusOK, "Preset deleted", fiber.Map{"name": name})
}
