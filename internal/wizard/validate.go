package wizard

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"buffcomply/dashboard/internal/i18n"
)

// Step names a page of a wizard.
type Step string

const (
	StepConfig   Step = "config"
	StepBasic    Step = "basic"
	StepKeywords Step = "keywords"
	StepReview   Step = "review"
)

var (
	ScrapeSteps = []Step{StepConfig, StepKeywords, StepReview}
	SearchSteps = []Step{StepBasic, StepKeywords, StepReview}
)

type scrapeConfigRules struct {
	Title    string   `json:"title" validate:"required"`
	URLs     []string `json:"urls" validate:"min=1,dive,site_url"`
	MaxDepth int      `json:"max_depth" validate:"min=1,max=5"`
}

type scrapeKeywordRules struct {
	Keywords []string `json:"keywords" validate:"min=1,dive,required"`
}

type searchBasicRules struct {
	Query        string `json:"query" validate:"required"`
	ResultsCount int    `json:"results_count" validate:"min=1,max=100"`
}

type categoryRules struct {
	Name     string   `json:"name" validate:"required"`
	Keywords []string `json:"keywords" validate:"min=1"`
}

type searchKeywordRules struct {
	Categories []categoryRules `json:"categories" validate:"dive"`
}

type loginRules struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
}

type forgotPasswordRules struct {
	Email string `json:"email" validate:"required,email"`
}

type registerRules struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
}

// ruleProblems maps "<namespace without indexes>|<tag>" to the problem it reports.
var ruleProblems = map[string]*Problem{
	"scrapeConfigRules.title|required":            ErrTitleRequired,
	"scrapeConfigRules.urls|min":                  ErrURLsRequired,
	"scrapeConfigRules.urls|site_url":             ErrURLInvalid,
	"scrapeConfigRules.max_depth|min":             ErrMaxDepthRange,
	"scrapeConfigRules.max_depth|max":             ErrMaxDepthRange,
	"scrapeKeywordRules.keywords|min":             ErrKeywordsRequired,
	"scrapeKeywordRules.keywords|required":        ErrKeywordEmpty,
	"searchBasicRules.query|required":             ErrQueryRequired,
	"searchBasicRules.results_count|min":          ErrResultsCountRange,
	"searchBasicRules.results_count|max":          ErrResultsCountRange,
	"searchKeywordRules.categories.name|required": ErrCategoryNameRequired,
	"searchKeywordRules.categories.keywords|min":  ErrCategoryKeywordsRequired,
	"loginRules.email|required":                   ErrEmailInvalid,
	"loginRules.email|email":                      ErrEmailInvalid,
	"loginRules.password|min":                     ErrPasswordTooShort,
	"forgotPasswordRules.email|required":          ErrEmailInvalid,
	"forgotPasswordRules.email|email":             ErrEmailInvalid,
	"registerRules.name|required":                 ErrNameRequired,
	"registerRules.email|required":                ErrEmailInvalid,
	"registerRules.email|email":                   ErrEmailInvalid,
	"registerRules.password|min":                  ErrPasswordTooShort,
	"registerRules.confirm_password|eqfield":      ErrPasswordsMismatch,
}

var indexPattern = regexp.MustCompile(`\[\d+\]`)

// Validator checks wizard steps and auth forms.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("site_url", func(fl validator.FieldLevel) bool {
		return ValidURL(fl.Field().String())
	})
	return &Validator{validate: v}
}

// ScrapeStep validates one step of the scrape wizard. The review step re-checks
// every earlier step.
func (v *Validator) ScrapeStep(form ScrapeForm, step Step) error {
	form.Normalize()
	switch step {
	case StepConfig:
		return v.check(scrapeConfigRules{Title: form.Title, URLs: form.URLs, MaxDepth: form.MaxDepth})
	case StepKeywords:
		if err := v.check(scrapeKeywordRules{Keywords: form.Keywords}); err != nil {
			return err
		}
		if hasDuplicates(form.Keywords) {
			return Problems{ErrKeywordDuplicate}
		}
		return nil
	case StepReview:
		var all Problems
		for _, s := range ScrapeSteps[:len(ScrapeSteps)-1] {
			all = appendProblems(all, v.ScrapeStep(form, s))
		}
		return all.orNil()
	}
	return Problems{ErrUnknownStep}
}

// Scrape validates the whole scrape form.
func (v *Validator) Scrape(form ScrapeForm) error {
	return v.ScrapeStep(form, StepReview)
}

// SearchStep validates one step of the search wizard.
func (v *Validator) SearchStep(form SearchForm, step Step) error {
	form.Normalize()
	switch step {
	case StepBasic:
		return v.check(searchBasicRules{Query: form.Query, ResultsCount: form.ResultsCount})
	case StepKeywords:
		rules := searchKeywordRules{Categories: make([]categoryRules, 0, len(form.Categories))}
		for _, cat := range form.Categories {
			rules.Categories = append(rules.Categories, categoryRules{Name: cat.Name, Keywords: cat.NonBlankKeywords()})
		}
		return v.check(rules)
	case StepReview:
		var all Problems
		for _, s := range SearchSteps[:len(SearchSteps)-1] {
			all = appendProblems(all, v.SearchStep(form, s))
		}
		return all.orNil()
	}
	return Problems{ErrUnknownStep}
}

// Search validates the whole search form.
func (v *Validator) Search(form SearchForm) error {
	return v.SearchStep(form, StepReview)
}

func (v *Validator) Login(form LoginForm) error {
	return v.check(loginRules{Email: strings.TrimSpace(form.Email), Password: form.Password})
}

func (v *Validator) Register(form RegisterForm) error {
	return v.check(registerRules{
		Name:            strings.TrimSpace(form.Name),
		Email:           strings.TrimSpace(form.Email),
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
}

func (v *Validator) ForgotPassword(form ForgotPasswordForm) error {
	return v.check(forgotPasswordRules{Email: strings.TrimSpace(form.Email)})
}

func (v *Validator) check(rules interface{}) error {
	err := v.validate.Struct(rules)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var problems Problems
	for _, fe := range verrs {
		problems = append(problems, problemFor(fe))
	}
	return problems
}

func problemFor(fe validator.FieldError) *Problem {
	key := indexPattern.ReplaceAllString(fe.Namespace(), "") + "|" + fe.Tag()
	if sentinel, ok := ruleProblems[key]; ok {
		return &Problem{Field: fe.Field(), Key: sentinel.Key}
	}
	return &Problem{Field: fe.Field(), Key: i18n.Key(fe.Tag())}
}

func appendProblems(all Problems, err error) Problems {
	var ps Problems
	if errors.As(err, &ps) {
		return append(all, ps...)
	}
	return all
}

func hasDuplicates(list []string) bool {
	seen := make(map[string]struct{}, len(list))
	for _, v := range list {
		if _, ok := seen[v]; ok {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}
