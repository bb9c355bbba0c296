package engine

import "fmt"

const (
	correctText   = "Bonne réponse !"
	incorrectText = "Mauvaise réponse !"
)

// ResolveTrueFalseAnswer scores a guess on a true/false round. It has no side
// effects and may be called any number of times with the same result.
func ResolveTrueFalseAnswer(p ChallengePayload, guessIsTrue bool) AnswerOutcome {
	out := AnswerOutcome{IsCorrect: guessIsTrue == p.CorrectAnswerIsTrue}
	msg := incorrectText
	if out.IsCorrect {
		msg = correctText
	}
	if p.Mode == ModeIntense {
		out.PenaltyUnits = TrueFalsePenaltyUnits
		if out.IsCorrect {
			msg += fmt.Sprintf(" Distribue %d gorgées.", out.PenaltyUnits)
		} else {
			msg += fmt.Sprintf(" Bois %d gorgées.", out.PenaltyUnits)
		}
	}
	if p.Justification != "" {
		msg += "\n" + p.Justification
	}
	out.DisplayMessage = msg
	return out
}
