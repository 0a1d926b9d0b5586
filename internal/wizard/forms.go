// Package wizard validates the multi-step scrape and search forms and the simulated
// login and registration forms.
package wizard

import (
	"regexp"
	"strings"

	"buffcomply/dashboard/models"
)

var siteURLPattern = regexp.MustCompile(`^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})([/\w .-]*)*/?$`)

// ValidURL reports whether s is accepted as a seed URL.
func ValidURL(s string) bool {
	return siteURLPattern.MatchString(s)
}

const (
	DefaultMaxDepth     = 1
	DefaultResultsCount = 100
	DefaultGoogleDomain = "google.com"
	DefaultLanguage     = "en"
)

// ScrapeForm is the state of the site scrape wizard.
type ScrapeForm struct {
	Title    string   `json:"title"`
	URLs     []string `json:"urls"`
	Keywords []string `json:"keywords"`
	MaxDepth int      `json:"max_depth"`
}

// AddURL appends a single URL after trimming and validating it.
func (f *ScrapeForm) AddURL(raw string) error {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ErrURLEmpty
	}
	if !ValidURL(u) {
		return ErrURLInvalid
	}
	f.URLs = append(f.URLs, u)
	return nil
}

// AddURLs adds a newline separated block of URLs. Blank lines are dropped, every line
// must be valid, and URLs already present are not added twice. It returns how many
// lines were accepted.
func (f *ScrapeForm) AddURLs(bulk string) (int, error) {
	var lines []string
	for _, line := range strings.Split(bulk, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return 0, nil
	}
	for _, line := range lines {
		if !ValidURL(line) {
			return 0, ErrURLsInvalid
		}
	}

	seen := make(map[string]struct{}, len(f.URLs)+len(lines))
	merged := make([]string, 0, len(f.URLs)+len(lines))
	for _, u := range append(append([]string(nil), f.URLs...), lines...) {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		merged = append(merged, u)
	}
	f.URLs = merged
	return len(lines), nil
}

func (f *ScrapeForm) RemoveURL(u string) {
	f.URLs = without(f.URLs, u)
}

// AddKeyword appends a trimmed keyword, rejecting blanks and repeats.
func (f *ScrapeForm) AddKeyword(raw string) error {
	kw := strings.TrimSpace(raw)
	if kw == "" {
		return ErrKeywordEmpty
	}
	for _, existing := range f.Keywords {
		if existing == kw {
			return ErrKeywordDuplicate
		}
	}
	f.Keywords = append(f.Keywords, kw)
	return nil
}

func (f *ScrapeForm) RemoveKeyword(kw string) {
	f.Keywords = without(f.Keywords, kw)
}

// Normalize trims the text fields and fills the default depth.
func (f *ScrapeForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.URLs = trimAll(f.URLs)
	f.Keywords = trimAll(f.Keywords)
	if f.MaxDepth == 0 {
		f.MaxDepth = DefaultMaxDepth
	}
}

// SearchForm is the state of the Google search wizard.
type SearchForm struct {
	Query        string            `json:"query"`
	ResultsCount int               `json:"results_count"`
	GoogleDomain string            `json:"google_domain"`
	Language     string            `json:"language"`
	Categories   []models.Category `json:"categories"`
}

// Normalize trims the text fields and fills the form defaults.
func (f *SearchForm) Normalize() {
	f.Query = strings.TrimSpace(f.Query)
	f.GoogleDomain = strings.TrimSpace(f.GoogleDomain)
	if f.ResultsCount == 0 {
		f.ResultsCount = DefaultResultsCount
	}
	if f.GoogleDomain == "" {
		f.GoogleDomain = DefaultGoogleDomain
	}
	if strings.TrimSpace(f.Language) == "" {
		f.Language = DefaultLanguage
	}
	categories := make([]models.Category, 0, len(f.Categories))
	for _, cat := range f.Categories {
		categories = append(categories, models.Category{Name: strings.TrimSpace(cat.Name), Keywords: cat.Keywords})
	}
	f.Categories = categories
}

// Keywords flattens the category keywords in order, dropping blanks.
func (f SearchForm) Keywords() []string {
	var out []string
	for _, cat := range f.Categories {
		out = append(out, cat.NonBlankKeywords()...)
	}
	return out
}

// Country is the last label of the Google domain, e.g. "br" for google.com.br.
func (f SearchForm) Country() string {
	domain := strings.Trim(strings.TrimSpace(f.GoogleDomain), ".")
	if domain == "" {
		return "com"
	}
	return domain[strings.LastIndex(domain, ".")+1:]
}

// LoginForm is the simulated sign in form.
type LoginForm struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// RegisterForm is the simulated sign up form.
type RegisterForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ForgotPasswordForm asks for a recovery link.
type ForgotPasswordForm struct {
	Email string `json:"email"`
}

func trimAll(list []string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func without(list []string, item string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != item {
			out = append(out, v)
		}
	}
	return out
}
