package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"buffcomply/dashboard/internal/results"
	"buffcomply/dashboard/internal/store"
	"buffcomply/dashboard/models"
	"buffcomply/dashboard/utils"
)

const fetchFailedMessage = "Failed to fetch scraping results"

// JobSummary is a job without its per-URL entries.
type JobSummary struct {
	ID                string         `json:"id,omitempty"`
	Title             string         `json:"title"`
	Kind              models.JobKind `json:"kind"`
	StartURLs         []string       `json:"start_urls"`
	Keywords          []string       `json:"keywords"`
	TotalCoincidences int            `json:"total_coincidences"`
	ScrapedSites      int            `json:"scraped_sites"`
	SuccessCount      int            `json:"success_count"`
	ErrorCount        int            `json:"error_count"`
	DurationSeconds   float64        `json:"duration_seconds"`
	Timestamp         *time.Time     `json:"timestamp,omitempty"`
	SearchQuery       *string        `json:"search_query,omitempty"`
}

// JobDetail adds consistency information to the summary.
type JobDetail struct {
	JobSummary
	RecountedCoincidences  int  `json:"recounted_coincidences"`
	CoincidencesConsistent bool `json:"coincidences_consistent"`
}

// EntryRow is one row of the entry table. Total is only set in success mode.
type EntryRow struct {
	models.ResultEntry
	Total *int `json:"total,omitempty"`
}

// EntriesResponse is the entry table of a job together with the view that produced it.
type EntriesResponse struct {
	JobID      string                 `json:"job_id"`
	Vocabulary []string               `json:"vocabulary"`
	View       results.ViewState      `json:"view"`
	Page       results.Page[EntryRow] `json:"page"`
}

func summarize(job models.ScrapeJobResult) JobSummary {
	s := JobSummary{
		ID:                job.ID,
		Title:             job.Title,
		Kind:              job.Kind,
		StartURLs:         job.StartURLs,
		Keywords:          job.Vocabulary(),
		TotalCoincidences: job.TotalCoincidences,
		ScrapedSites:      job.ScrapedSites,
		SuccessCount:      job.SuccessCount(),
		ErrorCount:        job.ErrorCount(),
		DurationSeconds:   job.DurationSeconds,
		SearchQuery:       job.SearchQuery,
	}
	if ts := job.Timestamp(); !ts.IsZero() {
		s.Timestamp = &ts
	}
	if s.StartURLs == nil {
		s.StartURLs = []string{}
	}
	return s
}

// fetchJobs loads the latest jobs. ok is false when a response has already been written.
func (h *ApplicationHandler) fetchJobs(c *fiber.Ctx) ([]models.ScrapeJobResult, bool, error) {
	jobs, err := h.Store.LatestJobs(c.UserContext(), h.ListLimit)
	if err != nil {
		h.Logger.WithError(err).Error("Error fetching scraping results")
		return nil, false, utils.RespondWithError(c, fiber.StatusInternalServerError, fetchFailedMessage)
	}
	return jobs, true, nil
}

// fetchJob loads one job. ok is false when a response has already been written.
func (h *ApplicationHandler) fetchJob(c *fiber.Ctx) (models.ScrapeJobResult, bool, error) {
	id := pathParam(c, "id")
	job, err := h.Store.GetJob(c.UserContext(), id)
	if errors.Is(err, store.ErrJobNotFound) {
		return job, false, utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
	}
	if err != nil {
		h.Logger.WithError(err).WithField("job_id", id).Error("Error fetching scraping result")
		return job, false, utils.RespondWithError(c, fiber.StatusInternalServerError, fetchFailedMessage)
	}
	return job, true, nil
}

// ListScrapingResults godoc
// @Summary Latest job documents
// @Description Returns up to 100 stored job documents, newest first, as a bare array.
// @Tags jobs
// @Produce json
// @Success 200 {array} models.ScrapeJobResult
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/scraping [get]
func (h *ApplicationHandler) ListScrapingResults(c *fiber.Ctx) error {
	jobs, ok, err := h.fetchJobs(c)
	if !ok {
		return err
	}
	if jobs == nil {
		jobs = []models.ScrapeJobResult{}
	}
	return c.Status(fiber.StatusOK).JSON(jobs)
}

// ListJobs godoc
// @Summary List jobs
// @Description Filters the latest jobs by title or seed URL, sorts them and returns one page.
// @Tags jobs
// @Produce json
// @Param q query string false "Text contained in the title or a seed URL"
// @Param sort query string false "recency or matches" default(recency)
// @Param page query int false "1-based page" default(1)
// @Param page_size query int false "Page size, 1..100" default(20)
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/jobs [get]
func (h *ApplicationHandler) ListJobs(c *fiber.Ctx) error {
	sortKey, err := results.ParseSortKey(c.Query("sort"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	jobs, ok, err := h.fetchJobs(c)
	if !ok {
		return err
	}

	filtered := results.SortJobs(results.FilterJobs(jobs, c.Query("q")), sortKey)
	summaries := make([]JobSummary, 0, len(filtered))
	for _, job := range filtered {
		summaries = append(summaries, summarize(job))
	}
	page := results.Paginate(summaries, c.QueryInt("page", 1), c.QueryInt("page_size", results.JobPageSize))
	return utils.RespondWithJSON(c, fiber.StatusOK, page)
}

// GetJob godoc
// @Summary Job summary
// @Tags jobs
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/jobs/{id} [get]
func (h *ApplicationHandler) GetJob(c *fiber.Ctx) error {
	job, ok, err := h.fetchJob(c)
	if !ok {
		return err
	}
	recounted := job.RecountCoincidences()
	if recounted != job.TotalCoincidences {
		h.Logger.WithFields(logrus.Fields{
			"job_id":    job.ID,
			"stored":    job.TotalCoincidences,
			"recounted": recounted,
		}).Warn("Stored total_coincidences differs from the entries")
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, JobDetail{
		JobSummary:             summarize(job),
		RecountedCoincidences:  recounted,
		CoincidencesConsistent: recounted == job.TotalCoincidences,
	})
}

// GetJobTree godoc
// @Summary URL hierarchy of a job
// @Description Arranges the visited URLs by path segment under base (default: the first seed URL). q keeps the branches whose path contains it.
// @Tags jobs
// @Produce json
// @Param id path string true "Job id"
// @Param base query string false "Root URL"
// @Param q query string false "Path search"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/jobs/{id}/tree [get]
func (h *ApplicationHandler) GetJobTree(c *fiber.Ctx) error {
	job, ok, err := h.fetchJob(c)
	if !ok {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, results.BuildTree(job, c.Query("base"), c.Query("q")))
}

// viewUpdateFromQuery reads the view inputs present in the query string.
func viewUpdateFromQuery(c *fiber.Ctx) (results.ViewUpdate, error) {
	var u results.ViewUpdate
	args := c.Context().QueryArgs()

	if args.Has("q") {
		q := c.Query("q")
		u.Search = &q
	}
	if args.Has("mode") {
		mode, err := results.ParseMode(c.Query("mode"))
		if err != nil {
			return u, err
		}
		u.Mode = &mode
	}
	if args.Has("require") {
		required := utils.SplitList(c.Query("require"))
		if required == nil {
			required = []string{}
		}
		u.Required = &required
	}
	if args.Has("sort") {
		key, err := results.ParseSortKey(c.Query("sort"))
		if err != nil {
			return u, err
		}
		u.Sort = &key
	}
	if args.Has("page") {
		page := c.QueryInt("page", 1)
		u.Page = &page
	}
	return u, nil
}

// ListEntries godoc
// @Summary Entry table of a job
// @Description Applies the session view state of the job, updated from the query, and returns one page of entries. Changing q, mode, require or sort resets the page to 1.
// @Tags jobs
// @Produce json
// @Param id path string true "Job id"
// @Param q query string false "Text contained in the entry URL"
// @Param mode query string false "success or error" default(success)
// @Param require query string false "Comma separated keywords that must be found"
// @Param page query int false "1-based page"
// @Param page_size query int false "Page size, 1..100" default(10)
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/jobs/{id}/entries [get]
func (h *ApplicationHandler) ListEntries(c *fiber.Ctx) error {
	update, err := viewUpdateFromQuery(c)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	job, ok, err := h.fetchJob(c)
	if !ok {
		return err
	}

	sess, err := h.session(c)
	if sess == nil {
		return err
	}
	view := h.loadView(sess, job.ID)
	view.Apply(update)

	filter := view.Filter()
	if unknown := filter.UnknownKeywords(job); len(unknown) > 0 {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			fmt.Sprintf("Unknown keywords: %s", strings.Join(unknown, ", ")))
	}

	entries := filter.Apply(job)
	rows := make([]EntryRow, 0, len(entries))
	for _, entry := range entries {
		row := EntryRow{ResultEntry: entry}
		if !entry.IsError() {
			total := entry.MatchCount()
			row.Total = &total
		}
		rows = append(rows, row)
	}

	page := results.Paginate(rows, view.Page, c.QueryInt("page_size", results.EntryPageSize))
	view.Page = page.Page
	if err := h.saveView(c, sess, job.ID, view); err != nil {
		return err
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, EntriesResponse{
		JobID:      job.ID,
		Vocabulary: job.Vocabulary(),
		View:       view,
		Page:       page,
	})
}

// ExportJob godoc
// @Summary Download the filtered entries of a job
// @Tags jobs
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Job id"
// @Param mode query string false "success or error" default(success)
// @Param q query string false "Text contained in the entry URL"
// @Param require query string false "Comma separated keywords that must be found"
// @Param format query string false "csv or xlsx" default(csv)
// @Param lang query string false "Language of the Yes/No cells"
// @Success 200 {file} file
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/jobs/{id}/export [get]
func (h *ApplicationHandler) ExportJob(c *fiber.Ctx) error {
	mode, err := results.ParseMode(c.Query("mode"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	format, err := results.ParseFormat(c.Query("format"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	job, ok, err := h.fetchJob(c)
	if !ok {
		return err
	}

	filter := results.EntryFilter{Search: c.Query("q"), Mode: mode, Required: utils.SplitList(c.Query("require"))}
	if unknown := filter.UnknownKeywords(job); len(unknown) > 0 {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			fmt.Sprintf("Unknown keywords: %s", strings.Join(unknown, ", ")))
	}

	table := results.BuildTable(job, filter.Apply(job), mode, h.exportLabels(c))
	filename := results.Filename(job.Title, mode, format)

	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, format.ContentType())
	if err := results.Write(c.Response().BodyWriter(), table, mode, format); err != nil {
		h.Logger.WithError(err).WithField("job_id", job.ID).Error("Export failed")
		c.Response().ResetBody()
		c.Set(fiber.HeaderContentDisposition, "")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not export results")
	}

	h.Metrics.ObserveExport(string(mode), string(format))
	h.Logger.WithFields(logrus.Fields{
		"job_id": job.ID,
		"mode":   mode,
		"format": format,
		"rows":   len(table.Rows),
	}).Info("Results exported")
	c.Status(fiber.StatusOK)
	return nil
}

// CompareJobs godoc
// @Summary Compare jobs side by side
// @Tags jobs
// @Produce json
// @Param q query string false "Text contained in the title or a seed URL"
// @Success 200 {object} utils.SuccessResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/jobs/compare [get]
func (h *ApplicationHandler) CompareJobs(c *fiber.Ctx) error {
	jobs, ok, err := h.fetchJobs(c)
	if !ok {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, results.Compare(results.FilterJobs(jobs, c.Query("q"))))
}

// GetStats godoc
// @Summary Global statistics
// @Tags jobs
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/stats [get]
func (h *ApplicationHandler) GetStats(c *fiber.Ctx) error {
	jobs, ok, err := h.fetchJobs(c)
	if !ok {
		return err
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, results.ComputeStats(jobs))
}
