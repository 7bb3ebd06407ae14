package encouragement

import (
	"fmt"
	"strings"
	"time"
)

const (
	WelcomeMessage = "Welcome! Log your first drink so we can track your progress and cheer you on."
	NotePrompt     = "Add a note to personalise this emotion"
)

// DrinkEvent is the most recent drink a user logged.
type DrinkEvent struct {
	OccurredAt time.Time
	GoalLabel  string
}

// Input is everything the selector needs from upstream queries.
type Input struct {
	LastDrink    *DrinkEvent
	LastNoteMood *Mood
	HasNote      bool
	LoadingDrink bool
	LoadingNote  bool
}

// Outcome is the fixed part of an encouragement, chosen once per input change.
type Outcome struct {
	Loading        bool
	Message        string
	Icon           *Icon
	ShowNotePrompt bool
	// TimeCategory is the elapsed-time bucket; it is empty without a drink.
	TimeCategory Category
	// Category is the pool the message was drawn from, after goal overrides.
	Category    Category
	ElapsedDays int

	drinkAt  time.Time
	hasDrink bool
}

// View is the rendered encouragement for one instant.
type View struct {
	Loading        bool     `json:"loading"`
	Message        string   `json:"message,omitempty"`
	Display        string   `json:"display,omitempty"`
	ElapsedPhrase  string   `json:"elapsed_phrase,omitempty"`
	Icon           *Icon    `json:"icon,omitempty"`
	ShowNotePrompt bool     `json:"show_note_prompt"`
	NotePrompt     string   `json:"note_prompt,omitempty"`
	Category       Category `json:"category,omitempty"`
	TimeCategory   Category `json:"time_category,omitempty"`
	ElapsedDays    int      `json:"elapsed_days"`
}

type Selector struct {
	pools  *Pools
	picker Picker
}

// NewSelector builds a selector. Nil pools fall back to DefaultPools and a nil
// picker to a time-seeded UniformPicker.
func NewSelector(pools *Pools, picker Picker) *Selector {
	if pools == nil {
		pools = DefaultPools()
	}
	if picker == nil {
		picker = NewUniformPicker(nil)
	}
	return &Selector{pools: pools, picker: picker}
}

func (s *Selector) pick(msgs []string) string {
	if len(msgs) == 0 {
		msgs = s.pools.Default()
	}
	return msgs[s.picker.Pick(len(msgs))]
}

// Choose computes the fixed message and icon for in at now.
func (s *Selector) Choose(in Input, now time.Time) Outcome {
	if in.LoadingDrink || in.LoadingNote {
		return Outcome{Loading: true}
	}

	if in.LastDrink == nil {
		out := Outcome{Message: WelcomeMessage, ShowNotePrompt: !in.HasNote}
		if in.HasNote {
			icon := IconNormalOne
			out.Icon = &icon
		}
		return out
	}

	mood := MoodOrNormal(in.LastNoteMood)
	elapsed := ElapsedDays(in.LastDrink.OccurredAt, now)
	category := ResolveCategory(elapsed, in.LastDrink.GoalLabel)

	out := Outcome{
		Message:        s.pick(s.pools.Candidates(category, mood)),
		ShowNotePrompt: !in.HasNote,
		TimeCategory:   Classify(elapsed),
		Category:       category,
		ElapsedDays:    elapsed,
		drinkAt:        in.LastDrink.OccurredAt,
		hasDrink:       true,
	}
	if in.HasNote {
		icon := SelectIcon(in.LastDrink.OccurredAt.Unix(), mood)
		out.Icon = &icon
	}
	return out
}

// ElapsedPhrase is the time since the drink at now, e.g. "3 days ago".
func (o Outcome) ElapsedPhrase(now time.Time) string {
	if !o.hasDrink {
		return ""
	}
	return FormatTimeAgo(now.Sub(o.drinkAt))
}

// Suffix is the clock-dependent sentence appended to the fixed message.
func (o Outcome) Suffix(now time.Time) string {
	if !o.hasDrink {
		return ""
	}
	human := o.ElapsedPhrase(now)
	if o.TimeCategory == CategoryRelapse {
		return fmt.Sprintf(" You last had a drink %s.", human)
	}
	return fmt.Sprintf(" You've been sober for %s.", strings.Replace(human, " ago", "", 1))
}

// Display joins the fixed message with the suffix for now.
func (o Outcome) Display(now time.Time) string {
	if o.Loading {
		return ""
	}
	return o.Message + o.Suffix(now)
}

func (o Outcome) View(now time.Time) View {
	v := View{
		Loading:        o.Loading,
		Message:        o.Message,
		Display:        o.Display(now),
		ElapsedPhrase:  o.ElapsedPhrase(now),
		Icon:           o.Icon,
		ShowNotePrompt: o.ShowNotePrompt,
		Category:       o.Category,
		TimeCategory:   o.TimeCategory,
		ElapsedDays:    o.ElapsedDays,
	}
	if o.ShowNotePrompt {
		v.NotePrompt = NotePrompt
	}
	return v
}
