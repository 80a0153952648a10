package domain

const (
	GuessTrue  = "True"
	GuessFalse = "False"
)

// TrueFalseQuestion accepts exactly the literals "True" and "False".
type TrueFalseQuestion struct {
	QuestionBase
	Correct bool
}

func (q *TrueFalseQuestion) Kind() QuestionKind { return KindTrueFalse }

func (q *TrueFalseQuestion) CheckIfCorrect(guess string) bool {
	var value bool
	switch guess {
	case GuessTrue:
		value = true
	case GuessFalse:
		value = false
	default:
		return false
	}
	return value == q.Correct
}

func (q *TrueFalseQuestion) Answers() []AnswerView {
	return []AnswerView{
		{Content: GuessTrue, Correct: q.CheckIfCorrect(GuessTrue)},
		{Content: GuessFalse, Correct: q.CheckIfCorrect(GuessFalse)},
	}
}

func (q *TrueFalseQuestion) AnswersList() []AnswerChoice {
	return []AnswerChoice{
		{Value: GuessTrue, Label: GuessTrue},
		{Value: GuessFalse, Label: GuessFalse},
	}
}

func (q *TrueFalseQuestion) AnswerChoiceToString(guess string) string {
	return guess
}
