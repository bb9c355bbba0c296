package engine

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// trueToken is the correctness token that marks a true statement.
const trueToken = "vrai"

// TrueFalseAnswer is the parsed form of a true/false prompt.
type TrueFalseAnswer struct {
	Statement     string
	IsTrue        bool
	Justification string
}

// splitAnswer splits "Question (answer)" on the first '('. ok is false when
// the prompt carries no answer segment.
func splitAnswer(raw string) (question, answer string, ok bool) {
	i := strings.IndexByte(raw, '(')
	if i < 0 {
		return strings.TrimSpace(raw), "", false
	}
	question = strings.TrimSpace(raw[:i])
	answer = strings.TrimSpace(raw[i+1:])
	answer = strings.TrimSpace(strings.TrimSuffix(answer, ")"))
	return question, answer, true
}

// ParseTrivia returns the question to display and the answer to reveal.
// answer is empty when the prompt has nothing to reveal.
func ParseTrivia(raw string) (question, answer string) {
	question, answer, _ = splitAnswer(raw)
	return question, answer
}

// ParseTrueFalse parses "Statement (vrai|faux, justification)". Missing or
// malformed answer segments yield a false answer with no justification.
func ParseTrueFalse(raw string) TrueFalseAnswer {
	statement, answer, ok := splitAnswer(raw)
	out := TrueFalseAnswer{Statement: statement}
	if !ok {
		return out
	}
	token, justification, _ := strings.Cut(answer, ",")
	out.IsTrue = strings.ToLower(strings.TrimSpace(token)) == trueToken
	out.Justification = strings.TrimSpace(justification)
	return out
}

var fold = cases.Fold()

// labelKey normalises a label so that NFD input (as stored by some
// keyboards and preference stores) and case differences still match.
func labelKey(s string) string {
	return fold.String(norm.NFC.String(strings.TrimSpace(s)))
}

var themeAliases = map[string]Theme{}

func init() {
	aliases := map[Theme][]string{
		ThemeCategory:    {"category", "catégorie", "categorie"},
		ThemeNeverHave:   {"never_have", "never have i ever", "je n'ai jamais", "je n’ai jamais"},
		ThemeWhoWould:    {"who_would", "who would", "qui pourrait"},
		ThemeGames:       {"games", "jeux"},
		ThemeDebates:     {"debates", "débats", "debats"},
		ThemeCulture:     {"culture", "culture g", "trivia"},
		ThemeTrueOrFalse: {"true_or_false", "true or false", "vrai ou faux"},
		ThemeOther:       {"other", "autres", "confidences"},
	}
	for theme, names := range aliases {
		for _, n := range names {
			themeAliases[labelKey(n)] = theme
		}
	}
}

// ParseTheme maps a stored label or token to a Theme.
func ParseTheme(label string) (Theme, bool) {
	t, ok := themeAliases[labelKey(label)]
	return t, ok
}

// ParseMode maps a stored mode token to a GameMode. Anything unrecognised is Classic.
func ParseMode(token string) GameMode {
	switch labelKey(token) {
	case "glou", "intense":
		return ModeIntense
	default:
		return ModeClassic
	}
}
