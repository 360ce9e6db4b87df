package database

import (
	"context"
	"database/sql"

	"github.com/mbolis/quick-inspect/model"
	"github.com/pkg/errors"
)

var (
	ErrNotFound  = errors.New("inspection not found in local store")
	ErrSubmitted = errors.New("inspection already submitted, stored copy kept")
)

// SaveInspection writes the whole record tree of insp in one transaction. A draft
// already stored under the same inspection id is replaced, never duplicated; one
// that left draft is never overwritten and the save fails with ErrSubmitted.
func SaveInspection(ctx context.Context, db *sql.DB, insp model.Inspection) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.save_inspection.begin_tx")
	}
	defer tx.Rollback()

	var stored sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT status FROM inspection WHERE remote_id = ?`, insp.ID).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// first save
	case err != nil:
		return errors.Wrap(err, "db.save_inspection.get_status")
	case model.ParseStatus(stored.String) != model.StatusDraft:
		return errors.Wrapf(ErrSubmitted, "inspection %d", insp.ID)
	}

	// children go with it through ON DELETE CASCADE
	_, err = tx.ExecContext(ctx, `DELETE FROM inspection WHERE remote_id = ?`, insp.ID)
	if err != nil {
		return errors.Wrap(err, "db.save_inspection.replace")
	}

	status := insp.Status
	if status == "" {
		status = model.StatusDraft
	}
	var inspectionId int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO inspection (remote_id, status) VALUES (?, ?)
		RETURNING id`,
		insp.ID,
		string(status),
	).Scan(&inspectionId)
	if err != nil {
		return errors.Wrap(err, "db.save_inspection.insert")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inspection_type (inspection_id, remote_id, name, access) VALUES (?, ?, ?, ?)`,
		inspectionId,
		insp.InspectionType.ID,
		insp.InspectionType.Name,
		insp.InspectionType.Access,
	)
	if err != nil {
		return errors.Wrap(err, "db.save_inspection.type.insert")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO area (inspection_id, remote_id, name) VALUES (?, ?, ?)`,
		inspectionId,
		insp.Area.ID,
		insp.Area.Name,
	)
	if err != nil {
		return errors.Wrap(err, "db.save_inspection.area.insert")
	}

	var surveyId int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO survey (inspection_id, remote_id) VALUES (?, ?)
		RETURNING id`,
		inspectionId,
		insp.Survey.ID,
	).Scan(&surveyId)
	if err != nil {
		return errors.Wrap(err, "db.save_inspection.survey.insert")
	}

	categoryStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO category (survey_id, remote_id, name, position) VALUES (?, ?, ?, ?)
		RETURNING id`)
	if err != nil {
		return errors.Wrap(err, "db.save_inspection.categories.prepare")
	}
	defer categoryStmt.Close()

	questionStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO question (category_id, remote_id, name, selected_answer_choice_id, position) VALUES (?, ?, ?, ?, ?)
		RETURNING id`)
	if err != nil {
		return errors.Wrap(err, "db.save_inspection.questions.prepare")
	}
	defer questionStmt.Close()

	choiceStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answer_choice (question_id, remote_id, name, score, position) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "db.save_inspection.choices.prepare")
	}
	defer choiceStmt.Close()

	for ci, c := range insp.Survey.Categories {
		var categoryId int64
		err = categoryStmt.QueryRowContext(ctx, surveyId, c.ID, c.Name, ci).Scan(&categoryId)
		if err != nil {
			return errors.Wrapf(err, "db.save_inspection.categories.insert %d", c.ID)
		}

		for qi, q := range c.Questions {
			var selected sql.NullInt64
			if q.SelectedAnswerChoiceID != nil {
				selected = sql.NullInt64{Int64: int64(*q.SelectedAnswerChoiceID), Valid: true}
			}

			var questionId int64
			err = questionStmt.QueryRowContext(ctx, categoryId, q.ID, q.Name, selected, qi).Scan(&questionId)
			if err != nil {
				return errors.Wrapf(err, "db.save_inspection.questions.insert %d", q.ID)
			}

			for ai, a := range q.AnswerChoices {
				_, err = choiceStmt.ExecContext(ctx, questionId, a.ID, a.Name, a.Score, ai)
				if err != nil {
					return errors.Wrapf(err, "db.save_inspection.choices.insert %d", a.ID)
				}
			}
		}
	}

	return errors.Wrap(tx.Commit(), "db.save_inspection.commit")
}

// LoadInspections maps every stored record tree back to the domain model, in the
// order the inspections were last saved. Missing optional fields load as zero values.
func LoadInspections(ctx context.Context, db *sql.DB) ([]model.Inspection, error) {
	return loadInspections(ctx, db, `1 = 1`)
}

// LoadInspection loads the single inspection stored under the remote id.
func LoadInspection(ctx context.Context, db *sql.DB, id int) (model.Inspection, error) {
	found, err := loadInspections(ctx, db, `i.remote_id = ?`, id)
	if err != nil {
		return model.Inspection{}, err
	}
	if len(found) == 0 {
		return model.Inspection{}, errors.Wrapf(ErrNotFound, "inspection %d", id)
	}
	return found[0], nil
}

func loadInspections(ctx context.Context, db *sql.DB, where string, args ...any) ([]model.Inspection, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			i.id, i.remote_id, i.status,
			t.remote_id, t.name, t.access,
			a.remote_id, a.name,
			s.id, s.remote_id
		FROM inspection i
		LEFT OUTER JOIN inspection_type t ON (i.id = t.inspection_id)
		LEFT OUTER JOIN area a ON (i.id = a.inspection_id)
		LEFT OUTER JOIN survey s ON (i.id = s.inspection_id)
		WHERE `+where+`
		ORDER BY i.id`,
		args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_inspections")
	}

	inspections := []model.Inspection{}
	surveyIndex := map[int64]int{}
	for rows.Next() {
		var (
			rowId                 int64
			insp                  model.Inspection
			status                sql.NullString
			typeId, areaId        sql.NullInt64
			typeName, typeAccess  sql.NullString
			areaName              sql.NullString
			surveyRowId, surveyId sql.NullInt64
		)
		err = rows.Scan(
			&rowId, &insp.ID, &status,
			&typeId, &typeName, &typeAccess,
			&areaId, &areaName,
			&surveyRowId, &surveyId,
		)
		if err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "db.get_inspections.scan")
		}

		insp.Status = model.ParseStatus(status.String)
		insp.InspectionType = model.InspectionType{ID: int(typeId.Int64), Name: typeName.String, Access: typeAccess.String}
		insp.Area = model.Area{ID: int(areaId.Int64), Name: areaName.String}
		insp.Survey.ID = int(surveyId.Int64)
		insp.Survey.Categories = []model.Category{}

		if surveyRowId.Valid {
			surveyIndex[surveyRowId.Int64] = len(inspections)
		}
		inspections = append(inspections, insp)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, errors.Wrap(err, "db.get_inspections.rows")
	}
	if len(inspections) == 0 {
		return inspections, nil
	}

	// positions of each category/question row inside the result tree
	type categoryRef struct{ insp, category int }
	type questionRef struct{ insp, category, question int }
	categoryIndex := map[int64]categoryRef{}
	questionIndex := map[int64]questionRef{}

	rows, err = db.QueryContext(ctx, `
		SELECT c.id, c.survey_id, c.remote_id, c.name
		FROM category c
		INNER JOIN survey s ON (s.id = c.survey_id)
		INNER JOIN inspection i ON (i.id = s.inspection_id)
		WHERE `+where+`
		ORDER BY c.survey_id, c.position`,
		args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_inspections.categories")
	}
	for rows.Next() {
		var rowId, surveyRowId int64
		var id sql.NullInt64
		var name sql.NullString
		if err = rows.Scan(&rowId, &surveyRowId, &id, &name); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "db.get_inspections.categories.scan")
		}
		i, ok := surveyIndex[surveyRowId]
		if !ok {
			continue
		}
		survey := &inspections[i].Survey
		categoryIndex[rowId] = categoryRef{i, len(survey.Categories)}
		survey.Categories = append(survey.Categories, model.Category{
			ID:        int(id.Int64),
			Name:      name.String,
			Questions: []model.Question{},
		})
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, errors.Wrap(err, "db.get_inspections.categories.rows")
	}

	rows, err = db.QueryContext(ctx, `
		SELECT q.id, q.category_id, q.remote_id, q.name, q.selected_answer_choice_id
		FROM question q
		INNER JOIN category c ON (c.id = q.category_id)
		INNER JOIN survey s ON (s.id = c.survey_id)
		INNER JOIN inspection i ON (i.id = s.inspection_id)
		WHERE `+where+`
		ORDER BY q.category_id, q.position`,
		args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_inspections.questions")
	}
	for rows.Next() {
		var rowId, categoryRowId int64
		var id, selected sql.NullInt64
		var name sql.NullString
		if err = rows.Scan(&rowId, &categoryRowId, &id, &name, &selected); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "db.get_inspections.questions.scan")
		}
		ref, ok := categoryIndex[categoryRowId]
		if !ok {
			continue
		}
		q := model.Question{
			ID:            int(id.Int64),
			Name:          name.String,
			AnswerChoices: []model.AnswerChoice{},
		}
		if selected.Valid {
			s := int(selected.Int64)
			q.SelectedAnswerChoiceID = &s
		}
		category := &inspections[ref.insp].Survey.Categories[ref.category]
		questionIndex[rowId] = questionRef{ref.insp, ref.category, len(category.Questions)}
		category.Questions = append(category.Questions, q)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, errors.Wrap(err, "db.get_inspections.questions.rows")
	}

	rows, err = db.QueryContext(ctx, `
		SELECT a.question_id, a.remote_id, a.name, a.score
		FROM answer_choice a
		INNER JOIN question q ON (q.id = a.question_id)
		INNER JOIN category c ON (c.id = q.category_id)
		INNER JOIN survey s ON (s.id = c.survey_id)
		INNER JOIN inspection i ON (i.id = s.inspection_id)
		WHERE `+where+`
		ORDER BY a.question_id, a.position`,
		args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "db.get_inspections.choices")
	}
	defer rows.Close()
	for rows.Next() {
		var questionRowId int64
		var id sql.NullInt64
		var name sql.NullString
		var score sql.NullFloat64
		if err = rows.Scan(&questionRowId, &id, &name, &score); err != nil {
			return nil, errors.Wrap(err, "db.get_inspections.choices.scan")
		}
		ref, ok := questionIndex[questionRowId]
		if !ok {
			continue
		}
		q := &inspections[ref.insp].Survey.Categories[ref.category].Questions[ref.question]
		q.AnswerChoices = append(q.AnswerChoices, model.AnswerChoice{
			ID:    int(id.Int64),
			Name:  name.String,
			Score: score.Float64,
		})
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "db.get_inspections.choices.rows")
	}

	return inspections, nil
}

// MarkSubmitted flips the stored inspection to submitted and writes back the
// selected answers of insp, matching questions by category and question id.
// Questions with no stored counterpart are skipped.
func MarkSubmitted(ctx context.Context, db *sql.DB, insp model.Inspection) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "db.mark_submitted.begin_tx")
	}
	defer tx.Rollback()

	var inspectionId int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM inspection WHERE remote_id = ?`, insp.ID).Scan(&inspectionId)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrapf(ErrNotFound, "inspection %d", insp.ID)
	}
	if err != nil {
		return errors.Wrap(err, "db.mark_submitted.get_inspection")
	}

	_, err = tx.ExecContext(ctx, `UPDATE inspection SET status = ? WHERE id = ?`, string(model.StatusSubmitted), inspectionId)
	if err != nil {
		return errors.Wrap(err, "db.mark_submitted.status")
	}

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE question SET selected_answer_choice_id = ?
		WHERE remote_id = ?
			AND category_id IN (
				SELECT c.id FROM category c
				JOIN survey s ON (s.id = c.survey_id)
				WHERE s.inspection_id = ?
					AND c.remote_id = ?)`)
	if err != nil {
		return errors.Wrap(err, "db.mark_submitted.questions.prepare")
	}
	defer stmt.Close()

	for _, c := range insp.Survey.Categories {
		for _, q := range c.Questions {
			if q.SelectedAnswerChoiceID == nil {
				continue
			}
			_, err = stmt.ExecContext(ctx, *q.SelectedAnswerChoiceID, q.ID, inspectionId, c.ID)
			if err != nil {
				return errors.Wrapf(err, "db.mark_submitted.questions.update %d", q.ID)
			}
		}
	}

	return errors.Wrap(tx.Commit(), "db.mark_submitted.commit")
}
