package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mbolis/quick-inspect/config"
	"github.com/mbolis/quick-inspect/model"
	"github.com/pkg/errors"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(config.Config{DBUrl: filepath.Join(t.TempDir(), "inspections.sqlite")})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func intPtr(i int) *int { return &i }

func sampleInspection() model.Inspection {
	return model.Inspection{
		ID:             1,
		InspectionType: model.InspectionType{ID: 1, Name: "Clinic", Access: "write"},
		Area:           model.Area{ID: 1, Name: "Emergency ICU"},
		Status:         model.StatusDraft,
		Survey: model.Survey{
			ID: 1,
			Categories: []model.Category{
				{
					ID:   2,
					Name: "Safety",
					Questions: []model.Question{
						{
							ID:   1,
							Name: "Guard in place?",
							AnswerChoices: []model.AnswerChoice{
								{ID: 1, Name: "Yes", Score: 10},
								{ID: 2, Name: "No", Score: 0},
							},
						},
						{
							ID:   2,
							Name: "Exits marked?",
							AnswerChoices: []model.AnswerChoice{
								{ID: 3, Name: "Yes", Score: 2.5},
								{ID: 4, Name: "No", Score: -1},
							},
							SelectedAnswerChoiceID: intPtr(4),
						},
					},
				},
				{
					ID:   1,
					Name: "Hygiene",
					Questions: []model.Question{
						{
							ID:   1,
							Name: "Hands washed?",
							AnswerChoices: []model.AnswerChoice{
								{ID: 2, Name: "Always", Score: 5},
								{ID: 1, Name: "Sometimes", Score: 1},
							},
						},
					},
				},
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	want := sampleInspection()
	if err := SaveInspection(ctx, db, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadInspections(ctx, db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 inspection, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0], want) {
		t.Fatalf("round trip mismatch\n got: %+v\nwant: %+v", got[0], want)
	}
}

func TestSaveTwiceReplacesTree(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	insp := sampleInspection()
	if err := SaveInspection(ctx, db, insp); err != nil {
		t.Fatalf("first save: %v", err)
	}
	insp.Area.Name = "Ward 3"
	if err := SaveInspection(ctx, db, insp); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := LoadInspections(ctx, db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Area.Name != "Ward 3" {
		t.Fatalf("expected one replaced inspection, got %+v", got)
	}

	var questions int
	if err := db.QueryRow(`SELECT COUNT(*) FROM question`).Scan(&questions); err != nil {
		t.Fatalf("count questions: %v", err)
	}
	if questions != 3 {
		t.Fatalf("expected 3 stored questions, got %d", questions)
	}
}

func TestSaveIsAllOrNothing(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := SaveInspection(ctx, db, sampleInspection()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	second := sampleInspection()
	second.ID = 2
	if err := SaveInspection(ctx, db, second); err == nil {
		t.Fatalf("expected error with cancelled context")
	}

	got, err := LoadInspections(context.Background(), db)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected prior state untouched, got %+v", got)
	}
}

func TestSaveKeepsSubmittedInspection(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	insp := sampleInspection()
	if err := SaveInspection(ctx, db, insp); err != nil {
		t.Fatalf("save: %v", err)
	}
	insp.Survey.Categories[0].Questions[0].SelectedAnswerChoiceID = intPtr(1)
	if err := MarkSubmitted(ctx, db, insp); err != nil {
		t.Fatalf("mark submitted: %v", err)
	}

	// the service hands out the same inspection again, unanswered
	if err := SaveInspection(ctx, db, sampleInspection()); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("expected ErrSubmitted, got %v", err)
	}

	got, err := LoadInspection(ctx, db, 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Status != model.StatusSubmitted {
		t.Fatalf("expected submitted, got %q", got.Status)
	}
	sel := got.Survey.Categories[0].Questions[0].SelectedAnswerChoiceID
	if sel == nil || *sel != 1 {
		t.Fatalf("stored answer lost: %v", sel)
	}
}

func TestLoadInspectionOnlyItsOwnTree(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := sampleInspection()
	second := sampleInspection()
	second.ID = 2
	second.Area.Name = "Ward 3"
	second.Survey.Categories = second.Survey.Categories[1:]
	for _, insp := range []model.Inspection{first, second} {
		if err := SaveInspection(ctx, db, insp); err != nil {
			t.Fatalf("save %d: %v", insp.ID, err)
		}
	}

	got, err := LoadInspection(ctx, db, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, second) {
		t.Fatalf("mismatch\n got: %+v\nwant: %+v", got, second)
	}

	all, err := LoadInspections(ctx, db)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(all) != 2 || !reflect.DeepEqual(all[0], first) || !reflect.DeepEqual(all[1], second) {
		t.Fatalf("unexpected list %+v", all)
	}
}

func TestLoadDefaultsNullFields(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	res, err := db.Exec(`INSERT INTO inspection (remote_id, status) VALUES (9, NULL)`)
	if err != nil {
		t.Fatalf("insert inspection: %v", err)
	}
	rowId, _ := res.LastInsertId()
	res, err = db.Exec(`INSERT INTO survey (inspection_id, remote_id) VALUES (?, NULL)`, rowId)
	if err != nil {
		t.Fatalf("insert survey: %v", err)
	}
	surveyId, _ := res.LastInsertId()
	res, err = db.Exec(`INSERT INTO category (survey_id, remote_id, name, position) VALUES (?, 3, NULL, 0)`, surveyId)
	if err != nil {
		t.Fatalf("insert category: %v", err)
	}
	categoryId, _ := res.LastInsertId()
	if _, err = db.Exec(`INSERT INTO question (category_id, remote_id, name, position) VALUES (?, 4, NULL, 0)`, categoryId); err != nil {
		t.Fatalf("insert question: %v", err)
	}

	got, err := LoadInspection(ctx, db, 9)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Status != model.StatusDraft {
		t.Fatalf("expected draft, got %q", got.Status)
	}
	if got.Area != (model.Area{}) || got.InspectionType != (model.InspectionType{}) || got.Survey.ID != 0 {
		t.Fatalf("expected zero values, got %+v", got)
	}
	q := got.Survey.Categories[0].Questions[0]
	if q.ID != 4 || q.Name != "" || q.SelectedAnswerChoiceID != nil || len(q.AnswerChoices) != 0 {
		t.Fatalf("unexpected question %+v", q)
	}
}

func TestLoadInspectionNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := LoadInspection(context.Background(), db, 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkSubmitted(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	other := sampleInspection()
	other.ID = 2
	if err := SaveInspection(ctx, db, other); err != nil {
		t.Fatalf("save other: %v", err)
	}
	insp := sampleInspection()
	if err := SaveInspection(ctx, db, insp); err != nil {
		t.Fatalf("save: %v", err)
	}

	insp.Survey.Categories[0].Questions[0].SelectedAnswerChoiceID = intPtr(1)
	insp.Survey.Categories[0].Questions[1].SelectedAnswerChoiceID = intPtr(3)
	insp.Survey.Categories[1].Questions[0].SelectedAnswerChoiceID = intPtr(2)
	// no stored counterpart, must be skipped
	insp.Survey.Categories[1].Questions = append(insp.Survey.Categories[1].Questions,
		model.Question{ID: 99, SelectedAnswerChoiceID: intPtr(1)})

	if err := MarkSubmitted(ctx, db, insp); err != nil {
		t.Fatalf("mark submitted: %v", err)
	}

	got, err := LoadInspection(ctx, db, 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Status != model.StatusSubmitted {
		t.Fatalf("expected submitted, got %q", got.Status)
	}
	// question id 1 exists in both categories, each keeps its own selection
	for ci, c := range got.Survey.Categories {
		for qi, q := range c.Questions {
			want := insp.Survey.Categories[ci].Questions[qi].SelectedAnswerChoiceID
			if q.SelectedAnswerChoiceID == nil || *q.SelectedAnswerChoiceID != *want {
				t.Fatalf("category %d question %d: got %v want %d", c.ID, q.ID, q.SelectedAnswerChoiceID, *want)
			}
		}
	}
	if len(got.Survey.Categories[1].Questions) != 1 {
		t.Fatalf("unmatched question must not be inserted")
	}

	untouched, err := LoadInspection(ctx, db, 2)
	if err != nil {
		t.Fatalf("load other: %v", err)
	}
	if untouched.Status != model.StatusDraft || untouched.Survey.Categories[0].Questions[0].SelectedAnswerChoiceID != nil {
		t.Fatalf("other inspection must be untouched, got %+v", untouched)
	}
}

func TestMarkSubmittedNotFound(t *testing.T) {
	db := openTestDB(t)
	err := MarkSubmitted(context.Background(), db, sampleInspection())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
