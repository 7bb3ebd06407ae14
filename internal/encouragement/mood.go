package encouragement

import "strings"

type Mood string

const (
	MoodHappy  Mood = "happy"
	MoodNormal Mood = "normal"
	MoodSad    Mood = "sad"
)

var moods = []Mood{MoodHappy, MoodNormal, MoodSad}

// ParseMood reports whether s names a known mood. Matching ignores case and
// surrounding whitespace.
func ParseMood(s string) (Mood, bool) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MoodHappy, MoodNormal, MoodSad:
		return m, true
	}
	return MoodNormal, false
}

// MoodOrNormal resolves an optional mood, treating nil and malformed values as normal.
func MoodOrNormal(m *Mood) Mood {
	if m == nil {
		return MoodNormal
	}
	if parsed, ok := ParseMood(string(*m)); ok {
		return parsed
	}
	return MoodNormal
}

// Icon is one of the mood illustrations shipped with the mobile client.
type Icon struct {
	Name    string `json:"name"`
	Mood    Mood   `json:"mood"`
	EmojiID int    `json:"emoji_id"`
}

var (
	IconHappyOne  = Icon{Name: "HappyOne", Mood: MoodHappy, EmojiID: 4}
	IconHappyTwo  = Icon{Name: "HappyTwo", Mood: MoodHappy, EmojiID: 5}
	IconNormalOne = Icon{Name: "NormalOne", Mood: MoodNormal, EmojiID: 2}
	IconNormalTwo = Icon{Name: "NormalTwo", Mood: MoodNormal, EmojiID: 3}
	IconSadOne    = Icon{Name: "SadOne", Mood: MoodSad, EmojiID: 0}
	IconSadTwo    = Icon{Name: "SadTwo", Mood: MoodSad, EmojiID: 1}
)

var iconsByMood = map[Mood][]Icon{
	MoodHappy:  {IconHappyOne, IconHappyTwo},
	MoodNormal: {IconNormalOne, IconNormalTwo},
	MoodSad:    {IconSadOne, IconSadTwo},
}

// IconsFor returns the icon candidates for a mood, normal when the mood is unknown.
func IconsFor(m Mood) []Icon {
	if icons, ok := iconsByMood[m]; ok {
		return icons
	}
	return iconsByMood[MoodNormal]
}

// IconByEmojiID maps a note's emoji id back to its icon.
func IconByEmojiID(id int) (Icon, bool) {
	for _, m := range moods {
		for _, icon := range iconsByMood[m] {
			if icon.EmojiID == id {
				return icon, true
			}
		}
	}
	return Icon{}, false
}

// IconSeed is the seed used to pick a stable icon for a (drink, mood) pair:
// the drink's epoch seconds plus the sum of the mood's character codes.
func IconSeed(drinkSeconds int64, m Mood) int64 {
	seed := drinkSeconds
	for _, r := range string(m) {
		seed += int64(r)
	}
	return seed
}

// SelectIcon deterministically picks the icon for a (drink, mood) pair.
func SelectIcon(drinkSeconds int64, m Mood) Icon {
	icons := IconsFor(m)
	return icons[SeededIndex(IconSeed(drinkSeconds, m), len(icons))]
}
