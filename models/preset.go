package models

import (
	"strings"
	"time"
)

// Category groups related keywords of a preset, e.g. "Bonos".
type Category struct {
	Name     string   `json:"name" validate:"required"`
	Keywords []string `json:"keywords"`
}

// NonBlankKeywords returns the trimmed keywords, without blanks.
func (c Category) NonBlankKeywords() []string {
	var out []string
	for _, kw := range c.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Preset is a named, saved scraper configuration.
type Preset struct {
	Name       string     `json:"name" validate:"required,max=100"`
	URLs       []string   `json:"urls"`
	Categories []Category `json:"categories" validate:"dive"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AllKeywords flattens the category keywords, dropping blanks and duplicates.
func (p Preset) AllKeywords() []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, cat := range p.Categories {
		for _, kw := range cat.NonBlankKeywords() {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
