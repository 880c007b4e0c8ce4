package raffle

import "slices"

// PrizePool is the ordered, in-memory collection of prizes for one session.
// Iteration order is insertion order and is semantically significant: the draw
// engine's tie-break and the UI's row correspondence both depend on it, and it
// is preserved across load/save cycles.
//
// The pool is owned by a single RaffleService instance; it is not safe for
// concurrent use on its own.
type PrizePool struct {
	prizes []Prize
}

// NewPrizePool creates a pool from the given prizes, preserving their order.
// Prizes without an ID are assigned one; legacy records without a display
// mode default to DisplayName.
func NewPrizePool(prizes ...Prize) *PrizePool {
	pp := &PrizePool{prizes: make([]Prize, 0, len(prizes))}
	for _, p := range prizes {
		pp.Add(p)
	}
	return pp
}

// Add appends a prize to the pool and returns the stored copy, with an ID
// assigned when the caller left it empty.
func (pp *PrizePool) Add(p Prize) Prize {
	if p.ID == "" {
		p.ID = NewPrizeID()
	}
	p.DisplayMode = p.DisplayMode.orDefault()
	pp.prizes = append(pp.prizes, p)
	return p
}

// Get returns the prize with the given ID.
func (pp *PrizePool) Get(id string) (Prize, bool) {
	for i := range pp.prizes {
		if pp.prizes[i].ID == id {
			return pp.prizes[i], true
		}
	}
	return Prize{}, false
}

// RemoveWhere deletes every prize matching pred and returns how many were
// removed. Remaining prizes keep their IDs and relative order.
func (pp *PrizePool) RemoveWhere(pred func(Prize) bool) int {
	before := len(pp.prizes)
	pp.prizes = slices.DeleteFunc(pp.prizes, pred)
	return before - len(pp.prizes)
}

// PrizeUpdate is a partial update of a prize; nil fields keep their current
// values.
type PrizeUpdate struct {
	Name        *string
	DisplayText *string
	Probability *float64
	Quantity    *int
	Image       *string
	DisplayMode *DisplayMode
	Style       *Style
}

// UpdateFields applies a partial update to the prize with the given ID.
func (pp *PrizePool) UpdateFields(id string, upd PrizeUpdate) error {
	for i := range pp.prizes {
		if pp.prizes[i].ID != id {
			continue
		}
		p := pp.prizes[i]
		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.DisplayText != nil {
			p.DisplayText = *upd.DisplayText
		}
		if upd.Probability != nil {
			p.Probability = *upd.Probability
		}
		if upd.Quantity != nil {
			p.Quantity = *upd.Quantity
		}
		if upd.Image != nil {
			p.Image = *upd.Image
		}
		if upd.DisplayMode != nil {
			p.DisplayMode = upd.DisplayMode.orDefault()
		}
		if upd.Style != nil {
			p.Style = *upd.Style
		}
		if err := p.Validate(); err != nil {
			return err
		}
		pp.prizes[i] = p
		return nil
	}
	return ErrPrizeNotFound
}

// Replace swaps the pool contents, assigning IDs and default modes the way
// NewPrizePool does. Used by load and import paths.
func (pp *PrizePool) Replace(prizes []Prize) {
	pp.prizes = pp.prizes[:0]
	for _, p := range prizes {
		pp.Add(p)
	}
}

// All returns a snapshot copy of the pool in insertion order.
func (pp *PrizePool) All() []Prize {
	return slices.Clone(pp.prizes)
}

// Len returns the number of prizes in the pool.
func (pp *PrizePool) Len() int { return len(pp.prizes) }

// ActiveCount returns the number of prizes with remaining stock.
func (pp *PrizePool) ActiveCount() int {
	n := 0
	for i := range pp.prizes {
		if pp.prizes[i].Quantity > 0 {
			n++
		}
	}
	return n
}

// TotalActiveProbability returns the sum of probabilities over prizes with
// remaining stock.
func (pp *PrizePool) TotalActiveProbability() float64 {
	var total float64
	for i := range pp.prizes {
		if pp.prizes[i].Quantity > 0 {
			total += pp.prizes[i].Probability
		}
	}
	return total
}
