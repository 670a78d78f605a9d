package card

import "strings"

// Glyphs shown next to a card title, derived from its reality classification
const (
	IconLegend  = "🧙🏻‍♂️"
	IconDefault = "📖"
)

// RealityLegend is the only reality value with its own icon
const RealityLegend = "legend"

// Card represents a single fact or quiz about a city
type Card struct {
	ID           string   `json:"id" validate:"required"`
	Interactive  bool     `json:"interactive"`
	Language     string   `json:"language" validate:"required"`
	City         string   `json:"city"`
	Icon         string   `json:"icon"`
	Title        string   `json:"title"`
	Text         string   `json:"text"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correct_index"`
	Reality      string   `json:"reality"`
	Explanation  string   `json:"explanation"`
	Routes       []string `json:"routes"`
	Persons      []string `json:"persons"`
	Tags         []string `json:"tags"`
	Location     Location `json:"location"`
}

// IconFor returns the display glyph for a reality classification
func IconFor(reality string) string {
	if strings.ToLower(strings.TrimSpace(reality)) == RealityLegend {
		return IconLegend
	}
	return IconDefault
}

// IsQuiz reports whether the card is an interactive quiz
func (c Card) IsQuiz() bool {
	return c.Interactive
}

// DisplayIcon returns the stored icon, or the one derived from Reality when unset
func (c Card) DisplayIcon() string {
	if c.Icon != "" {
		return c.Icon
	}
	return IconFor(c.Reality)
}

// EffectiveCity resolves the city a card belongs to. The top-level city wins,
// then the city nested in a structured location, then a legacy location string.
// The result is lower-cased; an unresolvable city is empty.
func (c Card) EffectiveCity() string {
	if c.City != "" {
		return strings.ToLower(c.City)
	}
	return strings.ToLower(c.Location.CityName())
}

// Answer is the outcome of a quiz answer
type Answer struct {
	Correct      bool
	CorrectIndex int
}

// EvaluateAnswer checks a chosen option index against the card's correct index.
// A missing correct index counts as 0. A choice outside the options is never
// correct, even if it equals a bogus correct index.
func EvaluateAnswer(c Card, chosen int) Answer {
	correct := 0
	if c.CorrectIndex != nil {
		correct = *c.CorrectIndex
	}

	answer := Answer{CorrectIndex: correct}
	if chosen < 0 || chosen >= len(c.Options) {
		return answer
	}
	answer.Correct = chosen == correct
	return answer
}

// IntPtr is a small helper for building cards with a correct index
func IntPtr(v int) *int {
	return &v
}
