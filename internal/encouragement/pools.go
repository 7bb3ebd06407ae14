package encouragement

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pools holds the candidate messages per category and mood. A Pools value is
// validated on construction and never mutated afterwards.
type Pools struct {
	byCategory map[Category]map[Mood][]string
	fallback   []string
}

// PoolSet is the unvalidated shape accepted by NewPools.
type PoolSet struct {
	Categories map[Category]map[Mood][]string
	Default    []string
}

// fallbackCategory is consulted when a category has no entry for a mood.
var fallbackCategory = map[Category]Category{
	CategoryGoalReached: CategoryLongTerm,
	CategoryGoalNear:    CategoryMilestone,
}

func NewPools(set PoolSet) (*Pools, error) {
	p := &Pools{byCategory: make(map[Category]map[Mood][]string, len(set.Categories))}

	if len(set.Default) == 0 {
		return nil, errors.New("encouragement: default pool is empty")
	}
	def, err := cleanMessages(set.Default)
	if err != nil {
		return nil, fmt.Errorf("encouragement: default pool: %w", err)
	}
	p.fallback = def

	for c, byMood := range set.Categories {
		if !c.valid() {
			return nil, fmt.Errorf("encouragement: unknown category %q", c)
		}
		cleaned := make(map[Mood][]string, len(byMood))
		for m, msgs := range byMood {
			mood, ok := ParseMood(string(m))
			if !ok {
				return nil, fmt.Errorf("encouragement: %s: unknown mood %q", c, m)
			}
			if len(msgs) == 0 {
				continue
			}
			out, err := cleanMessages(msgs)
			if err != nil {
				return nil, fmt.Errorf("encouragement: %s/%s: %w", c, m, err)
			}
			cleaned[mood] = out
		}
		p.byCategory[c] = cleaned
	}
	return p, nil
}

func cleanMessages(msgs []string) ([]string, error) {
	out := make([]string, 0, len(msgs))
	for i, msg := range msgs {
		msg = strings.TrimSpace(msg)
		if msg == "" {
			return nil, fmt.Errorf("message %d is blank", i)
		}
		out = append(out, msg)
	}
	return out, nil
}

// Candidates resolves the pool for (c, m). Lookup order:
// (c, m), (fallback(c), m), (c, normal), (fallback(c), normal), default.
func (p *Pools) Candidates(c Category, m Mood) []string {
	chain := []Category{c}
	if fb, ok := fallbackCategory[c]; ok {
		chain = append(chain, fb)
	}
	for _, mood := range []Mood{m, MoodNormal} {
		for _, cat := range chain {
			if msgs := p.byCategory[cat][mood]; len(msgs) > 0 {
				return msgs
			}
		}
	}
	return p.fallback
}

// Default returns the generic pool used when nothing more specific exists.
func (p *Pools) Default() []string {
	return p.fallback
}

// LoadPoolsFile reads a YAML message file. Top-level keys are category names
// plus "default"; category values map mood names to message lists.
func LoadPoolsFile(path string) (*Pools, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("encouragement: read %s: %w", path, err)
	}
	return ParsePools(data)
}

func ParsePools(data []byte) (*Pools, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("encouragement: parse pools: %w", err)
	}

	set := PoolSet{Categories: make(map[Category]map[Mood][]string)}
	for key, node := range raw {
		if key == "default" {
			if err := node.Decode(&set.Default); err != nil {
				return nil, fmt.Errorf("encouragement: default: %w", err)
			}
			continue
		}
		var byMood map[Mood][]string
		if err := node.Decode(&byMood); err != nil {
			return nil, fmt.Errorf("encouragement: %s: %w", key, err)
		}
		set.Categories[Category(key)] = byMood
	}
	return NewPools(set)
}

// DefaultPools returns the built-in message copy.
func DefaultPools() *Pools {
	p, err := NewPools(defaultPoolSet())
	if err != nil {
		panic(err)
	}
	return p
}

func defaultPoolSet() PoolSet {
	return PoolSet{
		Categories: map[Category]map[Mood][]string{
			CategoryRelapse: {
				MoodHappy: {
					"One step back doesn’t erase the progress you've made. Start fresh, you can do this.",
					"Feelings are real, you're learning. We'll keep going together.",
				},
				MoodNormal: {
					"This was a bump in the road. Small steps tomorrow build the path forward.",
					"You've handled hard days before, you'll handle this one too.",
				},
				MoodSad: {
					"Be kind to yourself right now. Tomorrow is another chance to try again.",
					"It hurts, that's okay. You're still moving forward simply by noticing it.",
				},
			},
			CategoryEarly: {
				MoodHappy: {
					"Nice start! Keep building the good habit, one hour at a time.",
					"You're off to a great beginning! Keep stacking those wins.",
				},
				MoodNormal: {
					"Early days can be tricky. Keep your goal visible and be gentle with yourself.",
					"Small wins matter. Celebrate the minutes and hours.",
				},
				MoodSad: {
					"This is tough, but you’ve already begun. Don’t give up on yourself.",
					"You’re starting something important, it’s ok to be scared.",
				},
			},
			CategoryMilestone: {
				MoodHappy: {
					"Amazing progress! Look at how far you’ve come already.",
					"You should be proud! Keep going, you’re doing great.",
				},
				MoodNormal: {
					"A strong streak forming. Stick with the routine that helps you.",
					"You're building momentum, keep protecting it.",
				},
				MoodSad: {
					"Even on harder days, your streak shows real effort. Keep going.",
					"You’ve made meaningful progress. Don’t let one tough day define it.",
				},
			},
			CategoryLongTerm: {
				MoodHappy: {
					"You’ve built something powerful. Keep owning it.",
					"Your consistency is inspiring, keep it up!",
				},
				MoodNormal: {
					"Long-term progress is real. Maintain your supports and celebrate small wins.",
					"Wonderful consistency, you’re in a different league now.",
				},
				MoodSad: {
					"Long streaks still have rough days. You’ve proven you can make it through.",
					"You’ve been steady, lean on your tools and supports today.",
				},
			},
			CategoryGoalNear: {
				MoodHappy: {
					"You're nearly at your goal, this is huge. Keep pushing!",
					"So close to your target! Let's finish strong.",
				},
				MoodNormal: {
					"You're approaching your goal, little decisions matter now.",
					"Almost there. Keep using what’s worked for you.",
				},
				MoodSad: {
					"You're close, don't let discouragement stop you. One day at a time.",
					"You're nearly there. Reach out for support if you need it.",
				},
			},
			CategoryGoalReached: {
				MoodHappy: {
					"You reached your goal! Take a moment to celebrate how far you've come.",
					"Goal complete. You did the hard work, enjoy this win.",
				},
				MoodNormal: {
					"You've hit your goal. Think about what you want to aim for next.",
					"Goal reached. The habits that got you here will carry you further.",
				},
				MoodSad: {
					"You reached your goal, even if today feels heavy. That achievement is yours.",
					"Hard days don't undo a reached goal. Lean on your supports and keep going.",
				},
			},
		},
		Default: []string{
			"Keep going, small steps add up.",
			"You’re doing better than you think. Keep it up!",
		},
	}
}
