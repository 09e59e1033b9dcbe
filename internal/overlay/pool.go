package overlay

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/san-kum/smear/internal/config"
)

// slotState is the lifecycle of one pooled window.
//
//	inUse        -> availVisible  BeginFrame
//	availVisible -> inUse         Acquire, in place or moved
//	availVisible -> availHidden   ReleaseUnused, HideAll
//	availHidden  -> inUse         Acquire, moved
//	any          -> invalid       surface failure
//	invalid      -> closed        Prune, Purge
type slotState uint8

const (
	slotInvalid slotState = iota
	slotInUse
	slotAvailVisible
	slotAvailHidden
)

type slot struct {
	id        WindowID
	state     slotState
	claimedAt uint64
	lastUsed  uint64
	placement Placement
}

// Pool recycles overlay windows across animation frames. It is not safe
// for concurrent use; the cursor runtime serializes access.
type Pool struct {
	surf Surface
	cfg  config.PoolConfig
	log  *log.Logger

	slots []*slot
	// byPos indexes available-visible slots by placement. It never
	// holds a slot in any other state.
	byPos map[Placement]int

	epoch   uint64
	demand  int
	created int
	ewma    int64 // milli-windows
	budget  int
}

// New builds an empty pool over surf. A nil logger falls back to the
// process default.
func New(surf Surface, cfg config.PoolConfig, logger *log.Logger) *Pool {
	if logger == nil {
		logger = log.Default()
	}
	return &Pool{
		surf:   surf,
		cfg:    cfg,
		log:    logger,
		byPos:  make(map[Placement]int),
		budget: cfg.MinBudget,
	}
}

// BeginFrame opens a new claim epoch. Windows claimed during the prior
// epoch become available for reuse in place. Anything still in use from
// an older epoch was orphaned by an aborted frame and is recovered with
// a warning.
func (p *Pool) BeginFrame() {
	p.epoch++
	p.demand = 0
	p.created = 0
	clear(p.byPos)
	for i, s := range p.slots {
		switch s.state {
		case slotInUse:
			if s.claimedAt+1 < p.epoch {
				p.log.Warn("recovered stale overlay",
					"id", s.id, "claimed", s.claimedAt, "epoch", p.epoch)
			}
			s.state = slotAvailVisible
			p.byPos[s.placement] = i
		case slotAvailVisible:
			p.byPos[s.placement] = i
		case slotAvailHidden, slotInvalid:
		}
	}
}

// Acquire claims a window at pl, preferring one already there, then any
// available window, then a fresh create. A window that fails to move is
// invalidated and the scan continues. A create failure is returned to
// the caller, which drops that one cell and carries on.
func (p *Pool) Acquire(pl Placement) (WindowID, error) {
	p.demand++

	if i, ok := p.byPos[pl]; ok {
		s := p.slots[i]
		s.state = slotInUse
		s.claimedAt = p.epoch
		s.lastUsed = p.epoch
		delete(p.byPos, pl)
		return s.id, nil
	}

	for i, s := range p.slots {
		switch s.state {
		case slotInUse, slotInvalid:
			continue
		case slotAvailVisible, slotAvailHidden:
		}
		wasVisible := s.state == slotAvailVisible
		if err := p.surf.Move(s.id, pl); err != nil {
			p.log.Warn("overlay move failed", "id", s.id, "err", err)
			s.state = slotInvalid
			if wasVisible && p.byPos[s.placement] == i {
				delete(p.byPos, s.placement)
			}
			continue
		}
		if wasVisible && p.byPos[s.placement] == i {
			delete(p.byPos, s.placement)
		}
		s.placement = pl
		s.state = slotInUse
		s.claimedAt = p.epoch
		s.lastUsed = p.epoch
		return s.id, nil
	}

	id, err := p.surf.Create(pl)
	if err != nil {
		return 0, err
	}
	p.created++
	p.slots = append(p.slots, &slot{
		id:        id,
		state:     slotInUse,
		claimedAt: p.epoch,
		lastUsed:  p.epoch,
		placement: pl,
	})
	return id, nil
}

// ReleaseUnused hides every window left visible but unclaimed this
// frame, then folds the frame's demand into the adaptive budget.
func (p *Pool) ReleaseUnused() {
	for i, s := range p.slots {
		switch s.state {
		case slotAvailVisible:
			if p.byPos[s.placement] == i {
				delete(p.byPos, s.placement)
			}
			if err := p.surf.Hide(s.id); err != nil {
				p.log.Warn("overlay hide failed", "id", s.id, "err", err)
				s.state = slotInvalid
				continue
			}
			s.state = slotAvailHidden
		case slotInUse, slotAvailHidden, slotInvalid:
		}
	}
	p.updateBudget()
}

// updateBudget smooths per-frame demand into the keep budget. Spikes
// take effect immediately, decay is a 70/30 blend per frame, and the
// budget itself never falls by more than the margin in one step.
func (p *Pool) updateBudget() {
	d := int64(p.demand) * 1000
	if d > p.ewma {
		p.ewma = d
	} else {
		p.ewma = (7*p.ewma + 3*d) / 10
	}

	target := int((p.ewma+999)/1000) + p.cfg.BudgetMargin
	if target < p.cfg.MinBudget {
		target = p.cfg.MinBudget
	}
	if target > p.cfg.HardMaxBudget {
		target = p.cfg.HardMaxBudget
	}

	if target >= p.budget {
		p.budget = target
		return
	}
	shrink := p.budget - target
	if shrink > p.cfg.BudgetMargin {
		shrink = p.cfg.BudgetMargin
	}
	p.budget -= shrink
}

// Prune closes surplus windows down to the smaller of limit and the
// adaptive budget. Invalid windows always close. Beyond that the least
// recently used available windows go first; windows in use are never
// closed.
func (p *Pool) Prune(limit int) {
	keep := limit
	if p.budget < keep {
		keep = p.budget
	}

	kept := p.slots[:0]
	for _, s := range p.slots {
		switch s.state {
		case slotInvalid:
			p.close(s)
		case slotInUse, slotAvailVisible, slotAvailHidden:
			kept = append(kept, s)
		}
	}
	p.slots = kept

	over := len(p.slots) - keep
	if over <= 0 {
		p.reindex()
		return
	}

	// Least recently used first, slice position breaking ties.
	order := make([]int, len(p.slots))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return p.slots[order[a]].lastUsed < p.slots[order[b]].lastUsed
	})

	drop := make(map[int]bool, over)
	for _, i := range order {
		if over == 0 {
			break
		}
		s := p.slots[i]
		switch s.state {
		case slotInUse, slotInvalid:
			continue
		case slotAvailVisible, slotAvailHidden:
		}
		p.close(s)
		drop[i] = true
		over--
	}
	kept = p.slots[:0]
	for i, s := range p.slots {
		if !drop[i] {
			kept = append(kept, s)
		}
	}
	p.slots = kept
	p.reindex()
}

// HideAll hides every open window immediately, including ones claimed
// this frame. The cursor reducer calls this when an animation settles so
// no smear residue outlives the motion.
func (p *Pool) HideAll() {
	for i, s := range p.slots {
		switch s.state {
		case slotInUse, slotAvailVisible:
			if p.byPos[s.placement] == i {
				delete(p.byPos, s.placement)
			}
			if err := p.surf.Hide(s.id); err != nil {
				p.log.Warn("overlay hide failed", "id", s.id, "err", err)
				s.state = slotInvalid
				continue
			}
			s.state = slotAvailHidden
		case slotAvailHidden, slotInvalid:
		}
	}
}

// Invalidate marks a window broken after an external write failure on
// it. The window stops being offered for reuse and closes at the next
// prune; the rest of the pool is unaffected.
func (p *Pool) Invalidate(id WindowID) {
	for i, s := range p.slots {
		if s.id != id {
			continue
		}
		switch s.state {
		case slotAvailVisible:
			if p.byPos[s.placement] == i {
				delete(p.byPos, s.placement)
			}
		case slotInUse, slotAvailHidden, slotInvalid:
		}
		s.state = slotInvalid
		return
	}
}

// Purge closes every window and empties the pool.
func (p *Pool) Purge() {
	for _, s := range p.slots {
		p.close(s)
	}
	p.slots = nil
	clear(p.byPos)
}

func (p *Pool) close(s *slot) {
	if err := p.surf.Close(s.id); err != nil {
		p.log.Warn("overlay close failed", "id", s.id, "err", err)
	}
}

func (p *Pool) reindex() {
	clear(p.byPos)
	for i, s := range p.slots {
		switch s.state {
		case slotAvailVisible:
			p.byPos[s.placement] = i
		case slotInUse, slotAvailHidden, slotInvalid:
		}
	}
}

// Stats is a point-in-time pool summary.
type Stats struct {
	Open    int // windows alive on the surface
	InUse   int
	Hidden  int
	Invalid int
	Budget  int
	Demand  int // acquires so far this epoch
	Created int // windows created so far this epoch
}

func (p *Pool) Stats() Stats {
	st := Stats{Budget: p.budget, Demand: p.demand, Created: p.created}
	for _, s := range p.slots {
		st.Open++
		switch s.state {
		case slotInUse:
			st.InUse++
		case slotAvailVisible:
		case slotAvailHidden:
			st.Hidden++
		case slotInvalid:
			st.Invalid++
		}
	}
	return st
}
