package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"buffcomply/dashboard/internal/results"
	"buffcomply/dashboard/utils"
)

func viewKey(jobID string) string {
	return "view:" + jobID
}

func (h *ApplicationHandler) session(c *fiber.Ctx) (*session.Session, error) {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		h.Logger.WithError(err).Error("Could not load session")
		return nil, utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not load session")
	}
	return sess, nil
}

// loadView returns the view state of a job stored in sess, or a fresh one.
func (h *ApplicationHandler) loadView(sess *session.Session, jobID string) results.ViewState {
	view := results.NewViewState()
	raw, ok := sess.Get(viewKey(jobID)).(string)
	if !ok {
		return view
	}
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		h.Logger.WithError(err).WithField("job_id", jobID).Warn("Discarding unreadable view state")
		return results.NewViewState()
	}
	return view
}

func (h *ApplicationHandler) saveView(c *fiber.Ctx, sess *session.Session, jobID string, view results.ViewState) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not save session")
	}
	sess.Set(viewKey(jobID), string(raw))
	if err := sess.Save(); err != nil {
		h.Logger.WithError(err).Error("Could not save session")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not save session")
	}
	return nil
}

// ToggleRequiredKeyword godoc
// @Summary Toggle a required keyword in the job view
// @Description Adds or removes keyword from the required set of the session view and resets it to page 1.
// @Tags jobs
// @Produce json
// @Param id path string true "Job id"
// @Param keyword path string true "Keyword"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/jobs/{id}/view/required/{keyword} [post]
func (h *ApplicationHandler) ToggleRequiredKeyword(c *fiber.Ctx) error {
	job, ok, err := h.fetchJob(c)
	if !ok {
		return err
	}

	keyword := pathParam(c, "keyword")
	known := false
	for _, kw := range job.Vocabulary() {
		if kw == keyword {
			known = true
			break
		}
	}
	if !known {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Unknown keywords: "+keyword)
	}

	sess, err := h.session(c)
	if sess == nil {
		return err
	}
	view := h.loadView(sess, job.ID)
	view.ToggleKeyword(keyword)
	if err := h.saveView(c, sess, job.ID, view); err != nil {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, view)
}

// ResetView godoc
// @Summary Reset the job view
// @Tags jobs
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} utils.SuccessResponse
// @Router /api/v1/jobs/{id}/view [delete]
func (h *ApplicationHandler) ResetView(c *fiber.Ctx) error {
	id := pathParam(c, "id")
	sess, err := h.session(c)
	if sess == nil {
		return err
	}
	view := results.NewViewState()
	if err := h.saveView(c, sess, id, view); err != nil {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, view)
}
