package inspection

import (
	"github.com/mbolis/quick-inspect/model"
)

// Report is the scoring breakdown of an inspection.
type Report struct {
	Total      float64         `json:"total"`
	Categories []CategoryScore `json:"categories"`
	// Unanswered questions have no selection at all, Stale ones point at a
	// choice the question does not offer. Neither contributes to the score.
	Unanswered []QuestionRef `json:"unanswered"`
	Stale      []QuestionRef `json:"stale"`
}

type CategoryScore struct {
	CategoryID int     `json:"categoryId"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
}

// QuestionRef names a question; question ids are only unique within their category.
type QuestionRef struct {
	CategoryID int `json:"categoryId"`
	QuestionID int `json:"questionId"`
}

// Complete reports whether every question of the survey has a selection.
func Complete(insp model.Inspection) bool {
	for _, c := range insp.Survey.Categories {
		for _, q := range c.Questions {
			if q.SelectedAnswerChoiceID == nil {
				return false
			}
		}
	}
	return true
}

// FinalScore sums the scores of the selected choices. Selections that resolve
// to no choice of their question add nothing.
func FinalScore(insp model.Inspection) float64 {
	return Score(insp).Total
}

func Score(insp model.Inspection) Report {
	report := Report{
		Categories: make([]CategoryScore, 0, len(insp.Survey.Categories)),
		Unanswered: []QuestionRef{},
		Stale:      []QuestionRef{},
	}
	for _, c := range insp.Survey.Categories {
		subtotal := CategoryScore{CategoryID: c.ID, Name: c.Name}
		for _, q := range c.Questions {
			ref := QuestionRef{CategoryID: c.ID, QuestionID: q.ID}
			if q.SelectedAnswerChoiceID == nil {
				report.Unanswered = append(report.Unanswered, ref)
				continue
			}
			choice, ok := q.Choice(*q.SelectedAnswerChoiceID)
			if !ok {
				report.Stale = append(report.Stale, ref)
				continue
			}
			subtotal.Score += choice.Score
		}
		report.Total += subtotal.Score
		report.Categories = append(report.Categories, subtotal)
	}
	return report
}

// SelectAnswer sets the selection of the first question with the given id,
// searching categories in order. A nil choiceID clears the selection. It
// returns false when no question has that id.
func SelectAnswer(insp *model.Inspection, questionID int, choiceID *int) (bool, error) {
	for ci := range insp.Survey.Categories {
		questions := insp.Survey.Categories[ci].Questions
		for qi := range questions {
			q := &questions[qi]
			if q.ID != questionID {
				continue
			}
			if choiceID == nil {
				q.SelectedAnswerChoiceID = nil
				return true, nil
			}
			if _, ok := q.Choice(*choiceID); !ok {
				return false, ErrUnknownChoice
			}
			id := *choiceID
			q.SelectedAnswerChoiceID = &id
			return true, nil
		}
	}
	return false, nil
}
