package encouragement

import (
	"sync"
	"time"
)

type cardKey struct {
	hasDrink     bool
	drinkSeconds int64
	goal         string
	hasMood      bool
	mood         Mood
	hasNote      bool
	loadingDrink bool
	loadingNote  bool
}

func keyOf(in Input) cardKey {
	k := cardKey{
		hasNote:      in.HasNote,
		loadingDrink: in.LoadingDrink,
		loadingNote:  in.LoadingNote,
	}
	if in.LastDrink != nil {
		k.hasDrink = true
		k.drinkSeconds = in.LastDrink.OccurredAt.Unix()
		k.goal = in.LastDrink.GoalLabel
	}
	if in.LastNoteMood != nil {
		k.hasMood = true
		k.mood = *in.LastNoteMood
	}
	return k
}

// Card keeps one encouragement stable across clock ticks. The fixed message is
// rechosen only when the inputs change; the elapsed suffix follows the clock.
type Card struct {
	selector *Selector

	mu      sync.Mutex
	chosen  bool
	key     cardKey
	outcome Outcome
}

func NewCard(selector *Selector) *Card {
	return &Card{selector: selector}
}

// Render returns the view for in at now, reusing the frozen outcome when in is
// unchanged since the previous call.
func (c *Card) Render(in Input, now time.Time) View {
	k := keyOf(in)

	c.mu.Lock()
	if !c.chosen || c.key != k {
		c.outcome = c.selector.Choose(in, now)
		c.key = k
		c.chosen = true
	}
	out := c.outcome
	c.mu.Unlock()

	return out.View(now)
}

// Tick re-renders the last chosen outcome at now. ok is false before the
// first Render.
func (c *Card) Tick(now time.Time) (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.chosen {
		return View{}, false
	}
	return c.outcome.View(now), true
}
