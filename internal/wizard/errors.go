package wizard

import (
	"strings"

	"buffcomply/dashboard/internal/i18n"
)

// Problem is one failed form rule. Problems compare equal under errors.Is when they
// break the same rule, whatever field they are attached to.
type Problem struct {
	Field string
	Key   i18n.Key
}

func (p *Problem) Error() string {
	if p.Field == "" {
		return string(p.Key)
	}
	return p.Field + ": " + string(p.Key)
}

func (p *Problem) Is(target error) bool {
	t, ok := target.(*Problem)
	return ok && t.Key == p.Key
}

var (
	ErrTitleRequired            = &Problem{Field: "title", Key: i18n.TitleRequired}
	ErrURLEmpty                 = &Problem{Field: "url", Key: i18n.URLEmpty}
	ErrURLInvalid               = &Problem{Field: "urls", Key: i18n.URLInvalid}
	ErrURLsInvalid              = &Problem{Field: "urls", Key: i18n.URLsInvalid}
	ErrURLsRequired             = &Problem{Field: "urls", Key: i18n.URLsRequired}
	ErrKeywordEmpty             = &Problem{Field: "keywords", Key: i18n.KeywordEmpty}
	ErrKeywordDuplicate         = &Problem{Field: "keywords", Key: i18n.KeywordDuplicate}
	ErrKeywordsRequired         = &Problem{Field: "keywords", Key: i18n.KeywordsRequired}
	ErrMaxDepthRange            = &Problem{Field: "max_depth", Key: i18n.MaxDepthRange}
	ErrQueryRequired            = &Problem{Field: "query", Key: i18n.QueryRequired}
	ErrResultsCountRange        = &Problem{Field: "results_count", Key: i18n.ResultsCountRange}
	ErrCategoryNameRequired     = &Problem{Field: "categories", Key: i18n.CategoryNameRequired}
	ErrCategoryKeywordsRequired = &Problem{Field: "categories", Key: i18n.CategoryKeywordsRequired}
	ErrUnknownStep              = &Problem{Field: "step", Key: i18n.UnknownStep}
	ErrNameRequired             = &Problem{Field: "name", Key: i18n.NameRequired}
	ErrEmailInvalid             = &Problem{Field: "email", Key: i18n.EmailInvalid}
	ErrPasswordTooShort         = &Problem{Field: "password", Key: i18n.PasswordTooShort}
	ErrPasswordsMismatch        = &Problem{Field: "confirm_password", Key: i18n.PasswordsMismatch}
)

// Problems collects every failed rule of a validation pass.
type Problems []*Problem

func (ps Problems) Error() string {
	msgs := make([]string, 0, len(ps))
	for _, p := range ps {
		msgs = append(msgs, p.Error())
	}
	return strings.Join(msgs, "; ")
}

func (ps Problems) Unwrap() []error {
	errs := make([]error, 0, len(ps))
	for _, p := range ps {
		errs = append(errs, p)
	}
	return errs
}

// Keys lists the message keys of the problems, without repeats.
func (ps Problems) Keys() []i18n.Key {
	seen := make(map[i18n.Key]struct{}, len(ps))
	keys := make([]i18n.Key, 0, len(ps))
	for _, p := range ps {
		if _, ok := seen[p.Key]; ok {
			continue
		}
		seen[p.Key] = struct{}{}
		keys = append(keys, p.Key)
	}
	return keys
}

func (ps Problems) orNil() error {
	if len(ps) == 0 {
		return nil
	}
	return ps
}
