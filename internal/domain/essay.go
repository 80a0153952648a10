package domain

// EssayQuestion is never auto-gradable; a marker decides the outcome.
type EssayQuestion struct {
	QuestionBase
}

func (q *EssayQuestion) Kind() QuestionKind { return KindEssay }

func (q *EssayQuestion) CheckIfCorrect(string) bool { return false }

func (q *EssayQuestion) Answers() []AnswerView { return nil }

func (q *EssayQuestion) AnswersList() []AnswerChoice { return nil }

func (q *EssayQuestion) AnswerChoiceToString(guess string) string { return guess }
