package handlers

import (
	"github.com/gofiber/fiber/v2"

	"buffcomply/dashboard/internal/complyclient"
	"buffcomply/dashboard/internal/i18n"
	"buffcomply/dashboard/internal/wizard"
	"buffcomply/dashboard/utils"
)

// ValidateSearchRequest is one interaction with the search wizard.
type ValidateSearchRequest struct {
	Step string            `json:"step"`
	Back bool              `json:"back,omitempty"`
	Form wizard.SearchForm `json:"form"`
}

// ValidateSearchStep godoc
// @Summary Validate a step of the search wizard
// @Tags search
// @Accept json
// @Produce json
// @Param request body ValidateSearchRequest true "Wizard state"
// @Param lang query string false "Message language"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/google-search/validate [post]
func (h *ApplicationHandler) ValidateSearchStep(c *fiber.Ctx) error {
	var req ValidateSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body: "+err.Error())
	}
	w := wizard.NewSearchWizard(h.Validator, &req.Form)
	step, err := walkWizard(w, utils.SanitizeInput(req.Step), req.Back)
	if err != nil {
		return h.respondInvalid(c, err)
	}
	if req.Back {
		return utils.RespondWithJSON(c, fiber.StatusOK, WizardStepResponse{Step: step, Next: w.Current(), Form: req.Form})
	}
	req.Form.Normalize()
	return utils.RespondWithMessage(c, fiber.StatusOK,
		h.Translator.Message(h.language(c), i18n.StepSaved),
		WizardStepResponse{Step: step, Next: w.Current(), Form: req.Form})
}

// SubmitSearch godoc
// @Summary Start a Google search job
// @Description Validates the form, flattens the category keywords and forwards the search to the scraping API.
// @Tags search
// @Accept json
// @Produce json
// @Param request body wizard.SearchForm true "Search configuration"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/google-search [post]
func (h *ApplicationHandler) SubmitSearch(c *fiber.Ctx) error {
	var form wizard.SearchForm
	if err := c.BodyParser(&form); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body: "+err.Error())
	}
	if err := wizard.NewSearchWizard(h.Validator, &form).Submit(); err != nil {
		return h.respondInvalid(c, err)
	}
	form.Normalize()

	raw, err := h.Comply.SubmitSearch(c.UserContext(), complyclient.SearchParams{
		Query:      form.Query,
		Keywords:   form.Keywords(),
		Country:    form.Country(),
		MaxResults: form.ResultsCount,
	})
	if err != nil {
		return h.respondUpstreamError(c, "google-search", err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, raw)
}

// ForwardSearch godoc
// @Summary Forward a Google search query string
// @Description Passes the raw query string to the scraping API unchanged and returns its JSON answer.
// @Tags search
// @Produce json
// @Success 200 {object} object
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/google-search [get]
func (h *ApplicationHandler) ForwardSearch(c *fiber.Ctx) error {
	raw, err := h.Comply.ForwardSearch(c.UserContext(), string(c.Context().QueryArgs().QueryString()))
	if err != nil {
		return h.respondUpstreamError(c, "google-search", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(raw)
}
