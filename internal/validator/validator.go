package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/arcanaland/wanderwheel/internal/card"
)

// ErrMalformedCard marks a record that cannot be used as a card at all
var ErrMalformedCard = errors.New("malformed card")

// KnownLanguages are the languages cards are expected in
var KnownLanguages = []string{"ru", "en", "cn"}

var validate = newStructValidator()

func newStructValidator() *playground.Validate {
	v := playground.New()
	// Report json field names so messages match the corpus file
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

type Validator struct {
	CorpusPath string
	Results    ValidationResults

	cards []indexedCard
}

type indexedCard struct {
	pos  int
	card card.Card
}

func NewValidator(corpusPath string) *Validator {
	return &Validator{
		CorpusPath: corpusPath,
		Results:    ValidationResults{},
	}
}

// CheckRecord reports whether a decoded card has every required field.
// The returned error wraps ErrMalformedCard.
func CheckRecord(c card.Card) error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs playground.ValidationErrors
		if errors.As(err, &fieldErrs) {
			missing := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				missing = append(missing, fe.Field())
			}
			return fmt.Errorf("%w: missing %s", ErrMalformedCard, strings.Join(missing, ", "))
		}
		return fmt.Errorf("%w: %v", ErrMalformedCard, err)
	}
	return nil
}

// QuizIssues lists the problems of a quiz card's question, options and
// correct index. Fact cards never have quiz issues.
func QuizIssues(c card.Card) []string {
	if !c.Interactive {
		return nil
	}

	var issues []string
	if strings.TrimSpace(c.Question) == "" {
		issues = append(issues, "quiz has no question")
	}
	if len(c.Options) == 0 {
		issues = append(issues, "quiz has no options")
	}
	if c.CorrectIndex == nil {
		issues = append(issues, "quiz has no correct_index")
	} else if *c.CorrectIndex < 0 || *c.CorrectIndex >= len(c.Options) {
		issues = append(issues,
			fmt.Sprintf("correct_index %d out of range for %d options", *c.CorrectIndex, len(c.Options)))
	}
	return issues
}

func (v *Validator) Validate() (ValidationResults, error) {
	if err := v.validateCorpusFile(); err != nil {
		return v.Results, err
	}

	v.validateDuplicates()
	v.validateLanguages()
	v.validateQuizzes()
	v.validateFacts()
	v.validateIcons()

	return v.Results, nil
}

// validateCorpusFile decodes the corpus and checks every record for required fields
func (v *Validator) validateCorpusFile() error {
	data, err := os.ReadFile(v.CorpusPath)
	if err != nil {
		return fmt.Errorf("error reading corpus: %w", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("corpus must be a JSON array of cards: %w", err)
	}

	if len(records) == 0 {
		v.Results.Warnings = append(v.Results.Warnings, "corpus contains no cards")
	}

	for i, raw := range records {
		c, notes, err := card.Decode(raw)
		if err != nil {
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("card #%d: %v: %v", i+1, ErrMalformedCard, err))
			continue
		}
		if err := CheckRecord(c); err != nil {
			v.Results.Errors = append(v.Results.Errors, fmt.Sprintf("%s: %v", label(i, c), err))
			continue
		}
		for _, note := range notes {
			v.Results.Warnings = append(v.Results.Warnings, fmt.Sprintf("%s: %s", label(i, c), note))
		}
		v.cards = append(v.cards, indexedCard{pos: i, card: c})
	}
	return nil
}

// validateDuplicates warns about ids that appear more than once
func (v *Validator) validateDuplicates() {
	seen := make(map[string]int)
	for _, ic := range v.cards {
		if first, ok := seen[ic.card.ID]; ok {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("%s: duplicate id, overrides card #%d", label(ic.pos, ic.card), first+1))
			continue
		}
		seen[ic.card.ID] = ic.pos
	}
}

// validateLanguages warns about languages outside the served set
func (v *Validator) validateLanguages() {
	for _, ic := range v.cards {
		lang := strings.ToLower(ic.card.Language)
		if !isKnownLanguage(lang) {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("%s: unknown language %q (supported: %s)",
					label(ic.pos, ic.card), ic.card.Language, strings.Join(KnownLanguages, ", ")))
		}
	}
}

// validateQuizzes checks that quiz cards can actually be answered
func (v *Validator) validateQuizzes() {
	for _, ic := range v.cards {
		for _, issue := range QuizIssues(ic.card) {
			v.Results.Errors = append(v.Results.Errors, fmt.Sprintf("%s: %s", label(ic.pos, ic.card), issue))
		}
	}
}

// validateFacts checks that fact cards carry something to show
func (v *Validator) validateFacts() {
	for _, ic := range v.cards {
		c := ic.card
		if c.Interactive {
			continue
		}
		if strings.TrimSpace(c.Title) == "" && strings.TrimSpace(c.Text) == "" {
			v.Results.Errors = append(v.Results.Errors,
				fmt.Sprintf("%s: fact has neither title nor text", label(ic.pos, c)))
		}
		if c.Question != "" || len(c.Options) > 0 || c.CorrectIndex != nil {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("%s: fact carries quiz fields that will be ignored", label(ic.pos, c)))
		}
		if c.EffectiveCity() == "" {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("%s: no city, only shown for city 'all'", label(ic.pos, c)))
		}
	}
}

// validateIcons warns when a stored icon disagrees with the reality classification
func (v *Validator) validateIcons() {
	for _, ic := range v.cards {
		c := ic.card
		if c.Icon == "" {
			continue
		}
		if want := card.IconFor(c.Reality); c.Icon != want {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("%s: icon %q does not match reality %q (expected %q)",
					label(ic.pos, c), c.Icon, c.Reality, want))
		}
	}
}

func isKnownLanguage(lang string) bool {
	for _, known := range KnownLanguages {
		if lang == known {
			return true
		}
	}
	return false
}

func label(pos int, c card.Card) string {
	if c.ID == "" {
		return fmt.Sprintf("card #%d", pos+1)
	}
	return fmt.Sprintf("card #%d (%s)", pos+1, c.ID)
}
