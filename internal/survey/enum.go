package survey

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusClosed    Status = "closed"
)

var AllStatuses = []Status{
	StatusDraft,
	StatusPublished,
	StatusClosed,
}

func (s Status) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Type string

const (
	TypeQuestionnaire Type = "questionnaire"
	TypeExam          Type = "exam"
)

func (t Type) IsValid() bool {
	return t == TypeQuestionnaire || t == TypeExam
}

type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionShortAnswer    QuestionType = "short_answer"
	QuestionEssay          QuestionType = "essay"
)

var AllQuestionTypes = []QuestionType{
	QuestionSingleChoice,
	QuestionMultipleChoice,
	QuestionTrueFalse,
	QuestionShortAnswer,
	QuestionEssay,
}

func (t QuestionType) IsValid() bool {
	for _, v := range AllQuestionTypes {
		if t == v {
			return true
		}
	}
	return false
}

// IsChoice reports whether the question presents a fixed option list.
func (t QuestionType) IsChoice() bool {
	return t == QuestionSingleChoice || t == QuestionMultipleChoice || t == QuestionTrueFalse
}

// IsFreeText reports whether the student answers with free-form text.
func (t QuestionType) IsFreeText() bool {
	return t == QuestionShortAnswer || t == QuestionEssay
}
