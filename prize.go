package raffle

import (
	"strings"

	"github.com/google/uuid"
)

// DisplayMode selects how the UI layer presents a prize. The draw logic never
// reads it.
type DisplayMode string

const (
	DisplayName  DisplayMode = "name"
	DisplayImage DisplayMode = "image"
	DisplayAll   DisplayMode = "all"
)

// orDefault maps unknown or legacy-empty modes to DisplayName.
func (m DisplayMode) orDefault() DisplayMode {
	switch m {
	case DisplayName, DisplayImage, DisplayAll:
		return m
	}
	return DisplayName
}

// Style carries the presentation colors for a prize.
type Style struct {
	TextColor       string `json:"text_color,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
}

// Prize represents one weighted, stocked entry in the draw pool.
//
// Probability is a percentage share in [0, 100], meaningful only relative to
// the other active prizes. A prize with Quantity == 0 is inactive and
// contributes nothing to sampling.
type Prize struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	DisplayText string      `json:"display_text,omitempty"`
	Probability float64     `json:"probability"`
	Quantity    int         `json:"quantity"`
	Image       string      `json:"image,omitempty"` // opaque asset reference
	DisplayMode DisplayMode `json:"display_mode,omitempty"`
	Style       Style       `json:"style,omitempty"`
}

// NewPrizeID returns a stable, opaque prize identifier. IDs survive
// persistence round-trips and deletions of other prizes.
func NewPrizeID() string { return uuid.NewString() }

// Active reports whether the prize still has stock.
func (p *Prize) Active() bool { return p.Quantity > 0 }

// DisplayLabel returns the user-facing label, falling back to Name when no
// override is set.
func (p *Prize) DisplayLabel() string {
	if strings.TrimSpace(p.DisplayText) != "" {
		return p.DisplayText
	}
	return p.Name
}

// Validate validates the prize data
func (p *Prize) Validate() error {
	if p.Name == "" {
		return ErrInvalidPrizeName
	}
	if p.Probability < 0 || p.Probability > ProbabilityTotal {
		return ErrInvalidProbability
	}
	if p.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// ValidatePrizePool checks the configuration-time invariant: every prize is
// well formed and the active probabilities sum to 100 within
// ProbabilityTolerance. This gate runs when the user saves a configuration,
// not during or after a draw.
func ValidatePrizePool(prizes []Prize) error {
	if len(prizes) == 0 {
		return ErrEmptyPrizePool
	}

	var total float64
	for i := range prizes {
		if err := prizes[i].Validate(); err != nil {
			return err
		}
		if prizes[i].Quantity > 0 {
			total += prizes[i].Probability
		}
	}

	if total < ProbabilityTotal-ProbabilityTolerance || total > ProbabilityTotal+ProbabilityTolerance {
		return ErrProbabilityMismatch
	}
	return nil
}
