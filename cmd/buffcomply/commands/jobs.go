package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"buffcomply/dashboard/internal/i18n"
	"buffcomply/dashboard/internal/results"
	"buffcomply/dashboard/internal/store"
	"buffcomply/dashboard/internal/worker"
	"buffcomply/dashboard/models"
	"buffcomply/dashboard/utils"
)

func newJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspects stored scraping jobs.",
	}
	cmd.AddCommand(newJobsListCmd(), newJobsShowCmd(), newJobsExportCmd(), newJobsCompareCmd(), newJobsTreeCmd())
	return cmd
}

func newJobsListCmd() *cobra.Command {
	var (
		search string
		sort   string
		page   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lists the latest jobs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := results.ParseSortKey(sort)
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), func(docs store.DocumentStore) error {
				jobs, err := docs.LatestJobs(cmd.Context(), current.cfg.ListLimit)
				if err != nil {
					return fmt.Errorf("fetch jobs: %w", err)
				}
				listed := results.SortJobs(results.FilterJobs(jobs, search), key)
				renderJobs(cmd.OutOrStdout(), results.Paginate(listed, page, results.JobPageSize))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "q", "", "text contained in the title or a seed URL")
	cmd.Flags().StringVar(&sort, "sort", "recency", "recency or matches")
	cmd.Flags().IntVar(&page, "page", 1, "1-based page")
	return cmd
}

func renderJobs(out io.Writer, page results.Page[models.ScrapeJobResult]) {
	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Title", "Kind", "Sites", "Matches", "Errors", "Date"})
	for _, job := range page.Items {
		date := ""
		if ts := job.Timestamp(); !ts.IsZero() {
			date = ts.Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{job.ID, job.Title, job.Kind, job.ScrapedSites, job.TotalCoincidences, job.ErrorCount(), date})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("page %d/%d", page.Page, page.TotalPages), "", "", "", "", fmt.Sprintf("%d jobs", page.TotalItems)})
	t.Render()
}

// entryFlags are the filter inputs shared by show and export.
type entryFlags struct {
	mode    string
	search  string
	require string
}

func (f *entryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", "success", "success or error")
	cmd.Flags().StringVar(&f.search, "q", "", "text contained in the entry URL")
	cmd.Flags().StringVar(&f.require, "require", "", "comma separated keywords that must be found")
}

func (f entryFlags) filter(job models.ScrapeJobResult) (results.EntryFilter, error) {
	mode, err := results.ParseMode(f.mode)
	if err != nil {
		return results.EntryFilter{}, err
	}
	filter := results.EntryFilter{Search: f.search, Mode: mode, Required: utils.SplitList(f.require)}
	if unknown := filter.UnknownKeywords(job); len(unknown) > 0 {
		return results.EntryFilter{}, fmt.Errorf("unknown keywords: %s", strings.Join(unknown, ", "))
	}
	return filter, nil
}

func newJobsShowCmd() *cobra.Command {
	var (
		flags entryFlags
		page  int
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Shows the entries of one job.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(docs store.DocumentStore) error {
				job, err := docs.GetJob(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("fetch job %s: %w", args[0], err)
				}
				filter, err := flags.filter(job)
				if err != nil {
					return err
				}
				renderEntries(cmd.OutOrStdout(), job, filter.Mode, results.Paginate(filter.Apply(job), page, results.EntryPageSize))
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&page, "page", 1, "1-based page")
	return cmd
}

func renderEntries(out io.Writer, job models.ScrapeJobResult, mode results.Mode, page results.Page[models.ResultEntry]) {
	fmt.Fprintf(out, "%s (%s): %d sites, %d matches, %.1fs\n",
		job.Title, job.Kind, job.ScrapedSites, job.TotalCoincidences, job.DurationSeconds)

	tbl := results.BuildTable(job, page.Items, mode, results.DefaultLabels)
	t := newTable(out)
	header := make(table.Row, 0, len(tbl.Header))
	for _, h := range tbl.Header {
		header = append(header, h)
	}
	t.AppendHeader(header)
	for _, cells := range tbl.Rows {
		row := make(table.Row, 0, len(cells))
		for _, cell := range cells {
			if cell.Numeric {
				row = append(row, cell.Number)
			} else {
				row = append(row, cell.Text)
			}
		}
		t.AppendRow(row)
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, WidthMax: 60, WidthMaxEnforcer: text.Trim}})
	t.SetCaption("page %d/%d, %d entries", page.Page, page.TotalPages, page.TotalItems)
	t.Render()
}

// fileClaims hands out distinct file names to the exports of one batch.
type fileClaims struct {
	mu    sync.Mutex
	taken map[string]bool
}

func newFileClaims() *fileClaims {
	return &fileClaims{taken: make(map[string]bool)}
}

// claim returns the title based name for job, or the name with its id when another
// job of the batch already holds it.
func (fc *fileClaims) claim(job models.ScrapeJobResult, mode results.Mode, format results.Format) string {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	name := results.Filename(job.Title, mode, format)
	for n := 1; fc.taken[name]; n++ {
		id := job.ID
		if n > 1 {
			id = fmt.Sprintf("%s-%d", job.ID, n)
		}
		name = results.FilenameWithID(job.Title, id, mode, format)
	}
	fc.taken[name] = true
	return name
}

// exportTask writes the filtered entries of one job to a file in dir.
type exportTask struct {
	jobID  string
	docs   store.DocumentStore
	flags  entryFlags
	format results.Format
	labels results.Labels
	dir    string
	claims *fileClaims
	path   string
}

func (e *exportTask) ID() string { return e.jobID }

func (e *exportTask) Execute(ctx context.Context) error {
	job, err := e.docs.GetJob(ctx, e.jobID)
	if err != nil {
		return fmt.Errorf("fetch job %s: %w", e.jobID, err)
	}
	filter, err := e.flags.filter(job)
	if err != nil {
		return err
	}
	t := results.BuildTable(job, filter.Apply(job), filter.Mode, e.labels)

	e.path = filepath.Join(e.dir, e.claims.claim(job, filter.Mode, e.format))
	f, err := os.Create(e.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", e.path, err)
	}
	if err := results.Write(f, t, filter.Mode, e.format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newJobsExportCmd() *cobra.Command {
	var (
		flags   entryFlags
		format  string
		lang    string
		output  string
		dir     string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "export <id> [id...]",
		Short: "Exports the filtered entries of jobs to CSV or XLSX.",
		Long: "Exports the filtered entries of one job to --output, or of several jobs into --dir,\n" +
			"one file per job named after its title.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmtKind, err := results.ParseFormat(format)
			if err != nil {
				return err
			}
			translator, err := i18n.New(current.cfg.DefaultLanguage)
			if err != nil {
				return err
			}
			yes, no := translator.YesNo(translator.Match(lang))
			labels := results.Labels{Yes: yes, No: no}

			if len(args) > 1 {
				if output != "" {
					return fmt.Errorf("--output takes a single job; use --dir for %d jobs", len(args))
				}
				return withStore(cmd.Context(), func(docs store.DocumentStore) error {
					return exportMany(cmd, docs, args, exportTask{flags: flags, format: fmtKind, labels: labels, dir: dir, claims: newFileClaims()}, workers)
				})
			}

			return withStore(cmd.Context(), func(docs store.DocumentStore) error {
				job, err := docs.GetJob(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("fetch job %s: %w", args[0], err)
				}
				filter, err := flags.filter(job)
				if err != nil {
					return err
				}
				t := results.BuildTable(job, filter.Apply(job), filter.Mode, labels)

				path := output
				if path == "" {
					path = filepath.Join(dir, results.Filename(job.Title, filter.Mode, fmtKind))
				}
				if path == "-" {
					return results.Write(cmd.OutOrStdout(), t, filter.Mode, fmtKind)
				}
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				if err := results.Write(f, t, filter.Mode, fmtKind); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(t.Rows), path)
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	cmd.Flags().StringVar(&lang, "lang", "", "language of the Yes/No cells")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file of a single job, - for stdout (default derived from the title)")
	cmd.Flags().StringVar(&dir, "dir", ".", "directory for derived file names")
	cmd.Flags().IntVar(&workers, "workers", 4, "parallel exports when several ids are given")
	return cmd
}

// exportMany exports every id on a worker pool and reports one line per job.
func exportMany(cmd *cobra.Command, docs store.DocumentStore, ids []string, proto exportTask, workers int) error {
	d := worker.NewDispatcher(workers, len(ids), current.logger)
	d.Run(cmd.Context())

	tasks := make(map[string]*exportTask, len(ids))
	for _, id := range ids {
		if _, dup := tasks[id]; dup {
			continue
		}
		task := proto
		task.jobID = id
		task.docs = docs
		tasks[id] = &task
		if err := d.Submit(&task); err != nil {
			d.Stop()
			return err
		}
	}

	failed := 0
	t := newTable(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Job", "File", "Error"})
	for _, res := range d.Stop() {
		task := tasks[res.TaskID]
		if res.Err != nil {
			failed++
			t.AppendRow(table.Row{res.TaskID, "", res.Err.Error()})
			continue
		}
		t.AppendRow(table.Row{res.TaskID, task.path, ""})
	}
	t.SortBy([]table.SortBy{{Name: "Job", Mode: table.Asc}})
	t.Render()

	if failed > 0 {
		return fmt.Errorf("%d of %d exports failed", failed, len(tasks))
	}
	return nil
}

func newJobsCompareCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compares keyword hits across jobs.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(docs store.DocumentStore) error {
				jobs, err := docs.LatestJobs(cmd.Context(), current.cfg.ListLimit)
				if err != nil {
					return fmt.Errorf("fetch jobs: %w", err)
				}
				renderComparison(cmd.OutOrStdout(), results.Compare(results.FilterJobs(jobs, search)))
				renderStats(cmd.OutOrStdout(), results.ComputeStats(jobs))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&search, "q", "", "text contained in the title or a seed URL")
	return cmd
}

func renderComparison(out io.Writer, cmp results.Comparison) {
	t := newTable(out)
	header := table.Row{"Title", "Site", "Sites", "Matches"}
	for _, kw := range cmp.Keywords {
		header = append(header, kw)
	}
	t.AppendHeader(header)
	for _, r := range cmp.Rows {
		row := table.Row{r.Title, r.Site, r.ScrapedSites, r.TotalCoincidences}
		for _, kw := range cmp.Keywords {
			row = append(row, r.KeywordHits[kw])
		}
		t.AppendRow(row)
	}
	t.Render()
}

func renderStats(out io.Writer, s results.Stats) {
	t := newTable(out)
	t.AppendRows([]table.Row{
		{"Jobs", s.Jobs},
		{"Scraped sites", s.ScrapedSites},
		{"Coincidences", s.TotalCoincidences},
		{"Average duration (s)", fmt.Sprintf("%.1f", s.AverageDurationSeconds)},
		{"Site scrapes", s.ByKind[models.JobKindSiteScrape]},
		{"Google searches", s.ByKind[models.JobKindSearch]},
	})
	t.Render()
}

func newJobsTreeCmd() *cobra.Command {
	var base, search string
	cmd := &cobra.Command{
		Use:   "tree <id>",
		Short: "Shows the visited URLs of a job as a path tree.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(docs store.DocumentStore) error {
				job, err := docs.GetJob(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("fetch job %s: %w", args[0], err)
				}
				renderTree(cmd.OutOrStdout(), results.BuildTree(job, base, search))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "root URL (default the first seed URL)")
	cmd.Flags().StringVar(&search, "q", "", "keep the branches whose path contains this text")
	return cmd
}

func renderTree(out io.Writer, root *results.TreeNode) {
	l := list.NewWriter()
	l.SetOutputMirror(out)
	l.SetStyle(list.StyleConnectedRounded)
	level := 0
	root.Walk(func(n *results.TreeNode, depth int) {
		for ; level < depth; level++ {
			l.Indent()
		}
		for ; level > depth; level-- {
			l.UnIndent()
		}
		l.AppendItem(treeLabel(n))
	})
	l.Render()
}

func treeLabel(n *results.TreeNode) string {
	if !n.Visited {
		return n.Name
	}
	var found []string
	for _, kf := range n.Keywords {
		if kf.Found {
			found = append(found, kf.Keyword)
		}
	}
	if len(found) == 0 {
		return n.Name + " (no matches)"
	}
	return fmt.Sprintf("%s [%s]", n.Name, strings.Join(found, ", "))
}
