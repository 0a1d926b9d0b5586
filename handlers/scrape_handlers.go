package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"buffcomply/dashboard/internal/complyclient"
	"buffcomply/dashboard/internal/i18n"
	"buffcomply/dashboard/internal/wizard"
	"buffcomply/dashboard/models"
	"buffcomply/dashboard/utils"
)

const upstreamFailedMessage = "Failed to fetch data from API"

// ValidateScrapeRequest is one interaction with the scrape wizard. The optional URL,
// BulkURLs and Keyword inputs are added to Form before Step is validated. Back moves
// to the previous step without validating.
type ValidateScrapeRequest struct {
	Step     string            `json:"step"`
	Back     bool              `json:"back,omitempty"`
	Form     wizard.ScrapeForm `json:"form"`
	URL      string            `json:"url,omitempty"`
	BulkURLs string            `json:"bulk_urls,omitempty"`
	Keyword  string            `json:"keyword,omitempty"`
}

// WizardStepResponse echoes the normalized form of a validated step and the step
// the wizard moved to.
type WizardStepResponse struct {
	Step  wizard.Step `json:"step"`
	Next  wizard.Step `json:"next"`
	Added int         `json:"added,omitempty"`
	Form  interface{} `json:"form"`
}

// walkWizard positions w on the named step, then moves back or validates forward.
func walkWizard(w *wizard.Wizard, name string, back bool) (wizard.Step, error) {
	if err := w.Goto(name); err != nil {
		return "", err
	}
	step := w.Current()
	if back {
		w.Previous()
		return step, nil
	}
	return step, w.Next()
}

// ValidateScrapeStep godoc
// @Summary Validate a step of the scrape wizard
// @Tags scrape
// @Accept json
// @Produce json
// @Param request body ValidateScrapeRequest true "Wizard state"
// @Param lang query string false "Message language"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/scrape/validate [post]
func (h *ApplicationHandler) ValidateScrapeStep(c *fiber.Ctx) error {
	var req ValidateScrapeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body: "+err.Error())
	}

	form := req.Form
	w := wizard.NewScrapeWizard(h.Validator, &form)
	if req.Back {
		step, err := walkWizard(w, utils.SanitizeInput(req.Step), true)
		if err != nil {
			return h.respondInvalid(c, err)
		}
		return utils.RespondWithJSON(c, fiber.StatusOK, WizardStepResponse{Step: step, Next: w.Current(), Form: form})
	}

	added := 0
	if req.URL != "" {
		if err := form.AddURL(req.URL); err != nil {
			return h.respondInvalid(c, err)
		}
		added++
	}
	if req.BulkURLs != "" {
		n, err := form.AddURLs(req.BulkURLs)
		if err != nil {
			return h.respondInvalid(c, err)
		}
		added += n
	}
	if req.Keyword != "" {
		if err := form.AddKeyword(req.Keyword); err != nil {
			return h.respondInvalid(c, err)
		}
	}

	step, err := walkWizard(w, utils.SanitizeInput(req.Step), false)
	if err != nil {
		return h.respondInvalid(c, err)
	}
	form.Normalize()
	return utils.RespondWithMessage(c, fiber.StatusOK,
		h.Translator.Message(h.language(c), i18n.StepSaved),
		WizardStepResponse{Step: step, Next: w.Current(), Added: added, Form: form})
}

// SubmitScrape godoc
// @Summary Start a site scrape
// @Description Validates the whole form and forwards it to the scraping API with max_depth=1.
// @Tags scrape
// @Accept json
// @Produce json
// @Param request body wizard.ScrapeForm true "Scrape configuration"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/scrape [post]
func (h *ApplicationHandler) SubmitScrape(c *fiber.Ctx) error {
	var form wizard.ScrapeForm
	if err := c.BodyParser(&form); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body: "+err.Error())
	}
	if err := wizard.NewScrapeWizard(h.Validator, &form).Submit(); err != nil {
		return h.respondInvalid(c, err)
	}
	form.Normalize()

	raw, err := h.Comply.SubmitScrape(c.UserContext(), complyclient.ScrapeParams{
		Title:    form.Title,
		URLs:     form.URLs,
		Keywords: form.Keywords,
	})
	if err != nil {
		return h.respondUpstreamError(c, "scrape", err)
	}

	var job models.ScrapeJobResult
	if err := job.UnmarshalJSON(raw); err != nil {
		h.Logger.WithError(err).Error("Scraping API returned an undecodable job")
		return utils.RespondWithError(c, fiber.StatusBadGateway, upstreamFailedMessage)
	}
	h.Logger.WithFields(logrus.Fields{
		"title":              job.Title,
		"scraped_sites":      job.ScrapedSites,
		"total_coincidences": job.TotalCoincidences,
	}).Info("Scrape job completed")
	return utils.RespondWithJSON(c, fiber.StatusOK, job)
}

// respondInvalid renders wizard problems as a localized 400.
func (h *ApplicationHandler) respondInvalid(c *fiber.Ctx, err error) error {
	return utils.RespondWithErrors(c, fiber.StatusBadRequest, "Validation failed", h.problemMessages(c, err))
}

// respondUpstreamError maps a scraping API failure to a single 502 message.
func (h *ApplicationHandler) respondUpstreamError(c *fiber.Ctx, endpoint string, err error) error {
	entry := h.Logger.WithError(err).WithField("endpoint", endpoint)
	var apiErr *complyclient.APIError
	if errors.As(err, &apiErr) {
		entry = entry.WithField("upstream_status", apiErr.Status)
	}
	if errors.Is(err, context.Canceled) {
		entry.Warn("Scraping API call cancelled by client")
	} else {
		entry.Error("Scraping API call failed")
	}
	return utils.RespondWithError(c, fiber.StatusBadGateway, upstreamFailedMessage)
}
