package engine

import (
	"fmt"

	"github.com/LudovicRocher01/Glow/internal/prompts"
)

// CountdownSeconds is the time allowed for a timed category round.
const CountdownSeconds = 30

// TrueFalsePenaltyUnits is the number of drinks at stake on a true/false round in Intense mode.
const TrueFalsePenaltyUnits = 2

var kinds = map[Kind]typeInfo{
	KindCategory:      {kind: KindCategory, theme: ThemeCategory, category: prompts.Categories, title: "Catégorie", icon: "📂", intensity: "10 🥃 max", timed: true},
	KindDare:          {kind: KindDare, theme: ThemeGames, category: prompts.Challenges, title: "Défi", icon: "🎯", intensity: "🥃🥃🥃"},
	KindNeverHave:     {kind: KindNeverHave, theme: ThemeNeverHave, category: prompts.NeverHave, title: "Je n'ai jamais", icon: "🙈", intensity: "🥃🥃"},
	KindWhoWould:      {kind: KindWhoWould, theme: ThemeWhoWould, category: prompts.WhoWould, title: "Qui pourrait", icon: "🤔", intensity: "🥃🥃"},
	KindSoloUnlucky:   {kind: KindSoloUnlucky, theme: ThemeOther, category: prompts.OneUnluck, title: "Action", icon: "🎬", intensity: "🥃?", intenseOnly: true},
	KindGroupUnlucky:  {kind: KindGroupUnlucky, theme: ThemeOther, category: prompts.Unluck, title: "Action Groupe", icon: "🤹", intensity: "🥃?", intenseOnly: true},
	KindVersus:        {kind: KindVersus, theme: ThemeGames, category: prompts.Versus, title: "Versus", icon: "⚔️", intensity: "🥃🥃🥃", needsPair: true},
	KindMiniGame:      {kind: KindMiniGame, theme: ThemeGames, category: prompts.Game, title: "Jeu", icon: "🎲", intensity: "🥃🥃🥃"},
	KindCurse:         {kind: KindCurse, theme: ThemeOther, category: prompts.Curse, title: "Malédiction", icon: "☠️", intensity: "🥃 par erreur", intenseOnly: true},
	KindDebate:        {kind: KindDebate, theme: ThemeDebates, category: prompts.Debate, title: "Débat", icon: "🗣️", intensity: "🥃🥃"},
	KindRoundCategory: {kind: KindRoundCategory, theme: ThemeCategory, category: prompts.RoundCategories, title: "Catégorie", icon: "🗂️", intensity: "🥃🥃"},
	KindTrivia:        {kind: KindTrivia, theme: ThemeCulture, category: prompts.Culture, title: "Culture G", icon: "📚", intensity: "🥃🥃"},
	KindTrueFalse:     {kind: KindTrueFalse, theme: ThemeTrueOrFalse, category: prompts.TrueOrFalse, title: "Vrai ou Faux", icon: "✅", intensity: "🥃🥃"},
	KindConfidence:    {kind: KindConfidence, theme: ThemeOther, category: prompts.Confidence, title: "Confidences", icon: "🕵️", intensity: "🥃🥃", needsPair: true},
}

// codes maps every ChallengeType to its Kind.
var codes = map[ChallengeType]Kind{
	0: KindCategory, 1: KindCategory, 2: KindCategory,
	3: KindDare, 4: KindDare, 5: KindDare,
	6: KindNeverHave, 7: KindNeverHave, 8: KindNeverHave,
	9: KindWhoWould, 10: KindWhoWould, 11: KindWhoWould,
	12: KindSoloUnlucky, 13: KindSoloUnlucky,
	14: KindGroupUnlucky, 15: KindGroupUnlucky,
	16: KindVersus,
	17: KindMiniGame,
	18: KindCurse,
	19: KindDebate, 20: KindDebate,
	21: KindRoundCategory, 22: KindRoundCategory,
	23: KindTrivia, 24: KindTrivia, 25: KindTrivia,
	26: KindTrueFalse, 27: KindTrueFalse, 28: KindTrueFalse,
	29: KindConfidence,
}

var themeCodes = map[Theme][]ChallengeType{
	ThemeCategory:    {0, 1, 2, 21, 22},
	ThemeOther:       {12, 13, 14, 15, 18, 29},
	ThemeNeverHave:   {6, 7, 8},
	ThemeWhoWould:    {9, 10, 11},
	ThemeGames:       {3, 4, 5, 16, 17},
	ThemeDebates:     {19, 20},
	ThemeCulture:     {23, 24, 25},
	ThemeTrueOrFalse: {26, 27, 28},
}

// defaultPool is used when mode filtering empties the selection.
var defaultPool = []ChallengeType{23, 24, 25, 26, 27, 28}

// IntenseOnly reports whether a code is removed from the pool in Classic mode.
func IntenseOnly(t ChallengeType) bool {
	k, ok := codes[t]
	return ok && kinds[k].intenseOnly
}

// CodesFor returns a copy of the codes mapped to a theme.
func CodesFor(theme Theme) []ChallengeType {
	return append([]ChallengeType(nil), themeCodes[theme]...)
}

// DefaultPool returns a copy of the fallback pool.
func DefaultPool() []ChallengeType {
	return append([]ChallengeType(nil), defaultPool...)
}

// message renders the line shown to the players. featured and second are
// player names; second is empty for kinds that don't pair players.
func message(k Kind, mode GameMode, featured, second, prompt string) string {
	switch k {
	case KindCategory:
		if mode == ModeIntense {
			return fmt.Sprintf("%s, tu as %d secondes pour citer autant %s que possible. Chaque bonne réponse te permet de distribuer une gorgée. Si tu te trompes, tu bois.", featured, CountdownSeconds, prompt)
		}
		return fmt.Sprintf("%s, tu as %d secondes pour citer autant %s que possible. Chaque bonne réponse te rapporte un point. Si tu te trompes, tu passes la main.", featured, CountdownSeconds, prompt)
	case KindDare, KindSoloUnlucky, KindTrivia, KindTrueFalse:
		return fmt.Sprintf("%s, %s", featured, prompt)
	case KindWhoWould:
		return prompt + " ?"
	case KindVersus:
		return fmt.Sprintf("%s et %s, %s", featured, second, prompt)
	case KindMiniGame:
		return fmt.Sprintf("%s. %s, à toi l'honneur !", prompt, featured)
	case KindCurse:
		return fmt.Sprintf("%s, jusqu'à la fin de la partie : %s", featured, prompt)
	case KindRoundCategory:
		if mode == ModeIntense {
			return fmt.Sprintf("Chacun son tour, citez %s. Celui qui se trompe ou hésite trop boit. %s, tu commences !", prompt, featured)
		}
		return fmt.Sprintf("Chacun son tour, citez %s. Celui qui se trompe ou hésite trop est éliminé. %s, tu commences !", prompt, featured)
	case KindConfidence:
		return fmt.Sprintf("%s, concernant %s : %s", featured, second, prompt)
	default:
		// never-have, group actions and debates address the whole table
		return prompt
	}
}
