package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"buffcomply/dashboard/internal/complyclient"
	"buffcomply/dashboard/internal/i18n"
	"buffcomply/dashboard/internal/presets"
	"buffcomply/dashboard/internal/results"
	"buffcomply/dashboard/internal/store"
	"buffcomply/dashboard/internal/wizard"
	"buffcomply/dashboard/middleware"
	"buffcomply/dashboard/utils"
)

// ComplyClient is what the submission handlers need from the scraping API client.
type ComplyClient interface {
	SubmitScrape(ctx context.Context, p complyclient.ScrapeParams) (json.RawMessage, error)
	SubmitSearch(ctx context.Context, p complyclient.SearchParams) (json.RawMessage, error)
	ForwardSearch(ctx context.Context, rawQuery string) (json.RawMessage, error)
}

// Dependencies are the collaborators of the HTTP handlers.
type Dependencies struct {
	Store      store.DocumentStore
	Comply     ComplyClient
	Presets    presets.Store
	Translator *i18n.Translator
	Metrics    *middleware.Metrics
	Logger     *logrus.Logger
	ListLimit  int
	LoginDelay time.Duration
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Store      store.DocumentStore
	Comply     ComplyClient
	Presets    presets.Store
	Translator *i18n.Translator
	Validator  *wizard.Validator
	Sessions   *session.Store
	Metrics    *middleware.Metrics
	Logger     *logrus.Logger
	ListLimit  int
	LoginDelay time.Duration
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(deps Dependencies) *ApplicationHandler {
	if deps.ListLimit < 1 {
		deps.ListLimit = store.MaxListLimit
	}
	if deps.Metrics == nil {
		deps.Metrics = middleware.NewMetrics()
	}
	return &ApplicationHandler{
		Store:      deps.Store,
		Comply:     deps.Comply,
		Presets:    deps.Presets,
		Translator: deps.Translator,
		Validator:  wizard.NewValidator(),
		Sessions:   session.New(session.Config{Expiration: 24 * time.Hour}),
		Metrics:    deps.Metrics,
		Logger:     deps.Logger,
		ListLimit:  deps.ListLimit,
		LoginDelay: deps.LoginDelay,
	}
}

// language picks the response language from ?lang= and Accept-Language.
func (h *ApplicationHandler) language(c *fiber.Ctx) language.Tag {
	return h.Translator.Match(c.Query("lang"), c.Get(fiber.HeaderAcceptLanguage))
}

// problemMessages localizes wizard problems. Other errors are reported verbatim.
func (h *ApplicationHandler) problemMessages(c *fiber.Ctx, err error) []string {
	tag := h.language(c)
	var problems wizard.Problems
	if !errors.As(err, &problems) {
		var single *wizard.Problem
		if errors.As(err, &single) {
			return []string{h.Translator.Message(tag, single.Key)}
		}
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(problems))
	for _, key := range problems.Keys() {
		msgs = append(msgs, h.Translator.Message(tag, key))
	}
	return msgs
}

// exportLabels are the localized Yes/No cell values.
func (h *ApplicationHandler) exportLabels(c *fiber.Ctx) results.Labels {
	yes, no := h.Translator.YesNo(h.language(c))
	return results.Labels{Yes: yes, No: no}
}

// pathParam returns the decoded, trimmed route parameter key.
func pathParam(c *fiber.Ctx, key string) string {
	value := c.Params(key)
	if unescaped, err := url.PathUnescape(value); err == nil {
		value = unescaped
	}
	return utils.SanitizeInput(value)
}
