package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"buffcomply/dashboard/internal/i18n"
	"buffcomply/dashboard/internal/wizard"
	"buffcomply/dashboard/utils"
)

// simulateDelay waits d, or until ctx ends.
func simulateDelay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Login godoc
// @Summary Simulated sign in
// @Description Validates the form and answers after a short delay. Credentials are not checked.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body wizard.LoginForm true "Credentials"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *ApplicationHandler) Login(c *fiber.Ctx) error {
	var form wizard.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body: "+err.Error())
	}
	if err := h.Validator.Login(form); err != nil {
		return h.respondInvalid(c, err)
	}
	if err := simulateDelay(c.UserContext(), h.LoginDelay); err != nil {
		return utils.RespondWithError(c, fiber.StatusRequestTimeout, "Request cancelled")
	}

	email := utils.SanitizeInput(form.Email)
	h.Logger.WithField("remember_me", form.RememberMe).Info("Simulated login")
	return utils.RespondWithMessage(c, fiber.StatusOK,
		h.Translator.Message(h.language(c), i18n.LoginSucceeded),
		fiber.Map{"email": email, "remember_me": form.RememberMe})
}

// Register godoc
// @Summary Simulated sign up
// @Tags auth
// @Accept json
// @Produce json
// @Param request body wizard.RegisterForm true "Account"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *ApplicationHandler) Register(c *fiber.Ctx) error {
	var form wizard.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body: "+err.Error())
	}
	if err := h.Validator.Register(form); err != nil {
		return h.respondInvalid(c, err)
	}
	if err := simulateDelay(c.UserContext(), h.LoginDelay); err != nil {
		return utils.RespondWithError(c, fiber.StatusRequestTimeout, "Request cancelled")
	}

	h.Logger.Info("Simulated registration")
	return utils.RespondWithMessage(c, fiber.StatusCreated,
		h.Translator.Message(h.language(c), i18n.RegisterSucceeded),
		fiber.Map{"name": utils.SanitizeInput(form.Name), "email": utils.SanitizeInput(form.Email)})
}

// ForgotPassword godoc
// @Summary Simulated password recovery
// @Description Validates the email and answers after a short delay. No email is sent.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body wizard.ForgotPasswordForm true "Account email"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/auth/forgot-password [post]
func (h *ApplicationHandler) ForgotPassword(c *fiber.Ctx) error {
	var form wizard.ForgotPasswordForm
	if err := c.BodyParser(&form); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body: "+err.Error())
	}
	if err := h.Validator.ForgotPassword(form); err != nil {
		return h.respondInvalid(c, err)
	}
	if err := simulateDelay(c.UserContext(), h.LoginDelay); err != nil {
		return utils.RespondWithError(c, fiber.StatusRequestTimeout, "Request cancelled")
	}

	h.Logger.Info("Simulated password recovery")
	return utils.RespondWithMessage(c, fiber.StatusOK,
		h.Translator.Message(h.language(c), i18n.ResetLinkSent),
		fiber.Map{"email": utils.SanitizeInput(form.Email)})
}
