package model

import (
	"encoding/json"
	"fmt"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus reads a stored status; empty or unknown values are drafts.
func ParseStatus(s string) Status {
	if st := Status(s); st.Valid() {
		return st
	}
	return StatusDraft
}

func (s *Status) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = StatusDraft
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !Status(raw).Valid() {
		return fmt.Errorf("unknown inspection status %q", raw)
	}
	*s = Status(raw)
	return nil
}

type Inspection struct {
	ID             int            `json:"id"`
	InspectionType InspectionType `json:"inspectionType"`
	Area           Area           `json:"area"`
	Survey         Survey         `json:"survey"`
	Status         Status         `json:"status"`
}

func (insp *Inspection) UnmarshalJSON(data []byte) error {
	type plain Inspection
	p := plain{Status: StatusDraft}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	*insp = Inspection(p)
	return nil
}

// Clone returns a deep copy which shares no slices with insp.
func (insp Inspection) Clone() Inspection {
	out := insp
	out.Survey.Categories = make([]Category, len(insp.Survey.Categories))
	for i, c := range insp.Survey.Categories {
		c.Questions = make([]Question, len(c.Questions))
		for j, q := range insp.Survey.Categories[i].Questions {
			q.AnswerChoices = append([]AnswerChoice(nil), q.AnswerChoices...)
			if q.SelectedAnswerChoiceID != nil {
				id := *q.SelectedAnswerChoiceID
				q.SelectedAnswerChoiceID = &id
			}
			c.Questions[j] = q
		}
		out.Survey.Categories[i] = c
	}
	return out
}

type InspectionType struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Access string `json:"access"`
}

type Area struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Survey struct {
	ID         int        `json:"id"`
	Categories []Category `json:"categories"`
}

type Category struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

type Question struct {
	ID                     int            `json:"id"`
	Name                   string         `json:"name"`
	AnswerChoices          []AnswerChoice `json:"answerChoices"`
	SelectedAnswerChoiceID *int           `json:"selectedAnswerChoiceId"`
}

// Choice looks up one of the question's own answer choices by id.
func (q Question) Choice(id int) (AnswerChoice, bool) {
	for _, c := range q.AnswerChoices {
		if c.ID == id {
			return c, true
		}
	}
	return AnswerChoice{}, false
}

type AnswerChoice struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// InspectionEnvelope is the body of both the start response and the submit request.
type InspectionEnvelope struct {
	Inspection Inspection `json:"inspection"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
