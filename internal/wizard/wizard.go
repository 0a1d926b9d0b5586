package wizard

// Wizard walks a fixed list of steps. Next only advances when the current step
// validates; Previous always goes back and clears the last error.
type Wizard struct {
	steps    []Step
	current  int
	validate func(Step) error
	err      error
}

func newWizard(steps []Step, validate func(Step) error) *Wizard {
	return &Wizard{steps: steps, validate: validate}
}

// NewScrapeWizard drives form through the config, keywords and review steps.
func NewScrapeWizard(v *Validator, form *ScrapeForm) *Wizard {
	return newWizard(ScrapeSteps, func(s Step) error { return v.ScrapeStep(*form, s) })
}

// NewSearchWizard drives form through the basic, keywords and review steps.
func NewSearchWizard(v *Validator, form *SearchForm) *Wizard {
	return newWizard(SearchSteps, func(s Step) error { return v.SearchStep(*form, s) })
}

func (w *Wizard) Current() Step { return w.steps[w.current] }

func (w *Wizard) Err() error { return w.err }

// Next validates the current step and moves forward on success. On the last step
// it only validates.
func (w *Wizard) Next() error {
	if err := w.validate(w.Current()); err != nil {
		w.err = err
		return err
	}
	w.err = nil
	if w.current < len(w.steps)-1 {
		w.current++
	}
	return nil
}

// Goto moves to the step called name without validating the steps before it.
func (w *Wizard) Goto(name string) error {
	step, err := ParseStep(w.steps, name)
	if err != nil {
		return err
	}
	for i, s := range w.steps {
		if s == step {
			w.current = i
		}
	}
	w.err = nil
	return nil
}

func (w *Wizard) Previous() {
	if w.current > 0 {
		w.current--
	}
	w.err = nil
}

// Submit validates every step, as the review page does before sending the form.
func (w *Wizard) Submit() error {
	w.err = w.validate(StepReview)
	return w.err
}

// ParseStep maps a step name to a step of steps.
func ParseStep(steps []Step, name string) (Step, error) {
	for _, s := range steps {
		if string(s) == name {
			return s, nil
		}
	}
	return "", Problems{ErrUnknownStep}
}
