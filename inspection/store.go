package inspection

import (
	"context"
	"database/sql"
	"sync"

	"github.com/mbolis/quick-inspect/database"
	"github.com/mbolis/quick-inspect/httpx"
	"github.com/mbolis/quick-inspect/log"
	"github.com/mbolis/quick-inspect/model"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

var (
	ErrNoCurrent     = errors.New("no inspection in progress")
	ErrNotFound      = errors.New("inspection not found")
	ErrValidation    = errors.New("Please answer all questions before submitting.")
	ErrNotDraft      = errors.New("inspection was already submitted")
	ErrUnknownChoice = errors.New("answer choice does not belong to the question")
	ErrBusy          = errors.New("another request to the inspection service is in progress")
)

// Store holds the inspection being worked on and the list of inspections known
// locally. All state changes happen under one lock; calls to the remote service
// and the database run outside of it.
type Store struct {
	db     *sql.DB
	remote *httpx.Client

	// at most one start or submit in flight
	busy atomic.Bool

	mu          sync.Mutex
	current     *model.Inspection
	inspections []model.Inspection
}

func NewStore(db *sql.DB, remote *httpx.Client) *Store {
	return &Store{
		db:          db,
		remote:      remote,
		inspections: []model.Inspection{},
	}
}

// StartNewInspection fetches a fresh inspection, stores it locally and makes it
// the current one.
func (s *Store) StartNewInspection(ctx context.Context) (model.Inspection, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return model.Inspection{}, ErrBusy
	}
	defer s.busy.Store(false)

	var env model.InspectionEnvelope
	if err := s.remote.Get(ctx, httpx.StartInspectionPath, &env); err != nil {
		log.Warnf("inspection.start: %s", err)
		return model.Inspection{}, errors.Wrap(err, "start inspection")
	}
	insp := env.Inspection

	if err := database.SaveInspection(ctx, s.db, insp); err != nil {
		log.Errorf("inspection.start.save: %s", err)
		return model.Inspection{}, errors.Wrap(err, "store started inspection")
	}

	s.mu.Lock()
	current := insp.Clone()
	s.current = &current
	s.mu.Unlock()

	log.WithFields(map[string]any{"inspection": insp.ID, "area": insp.Area.Name}).Info("inspection started")
	return insp, nil
}

// LoadAll replaces the known list with what is stored locally. On failure the
// previous list is kept.
func (s *Store) LoadAll(ctx context.Context) error {
	inspections, err := database.LoadInspections(ctx, s.db)
	if err != nil {
		log.Errorf("inspection.load_all: %s", err)
		return errors.Wrap(err, "load inspections")
	}

	s.mu.Lock()
	s.inspections = inspections
	s.mu.Unlock()
	return nil
}

func (s *Store) Inspections() []model.Inspection {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Inspection, len(s.inspections))
	for i, insp := range s.inspections {
		out[i] = insp.Clone()
	}
	return out
}

func (s *Store) Current() (model.Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return model.Inspection{}, ErrNoCurrent
	}
	return s.current.Clone(), nil
}

// Select makes a known inspection the current one.
func (s *Store) Select(id int) (model.Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, insp := range s.inspections {
		if insp.ID == id {
			current := insp.Clone()
			s.current = &current
			return insp.Clone(), nil
		}
	}
	return model.Inspection{}, errors.Wrapf(ErrNotFound, "inspection %d", id)
}

// SetSelectedAnswer records the answer to a question of the current inspection.
// It returns false, and changes nothing, when no question has that id.
func (s *Store) SetSelectedAnswer(questionID int, choiceID *int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false, ErrNoCurrent
	}
	if s.current.Status != model.StatusDraft {
		return false, ErrNotDraft
	}
	found, err := SelectAnswer(s.current, questionID, choiceID)
	if err != nil {
		return false, errors.Wrapf(err, "question %d", questionID)
	}
	if !found {
		log.Debugf("inspection.set_answer: no question %d in inspection %d", questionID, s.current.ID)
	}
	return found, nil
}

// Validate reports whether every question of the current inspection is answered.
func (s *Store) Validate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current != nil && Complete(*s.current)
}

func (s *Store) ComputeFinalScore() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return 0
	}
	return FinalScore(*s.current)
}

func (s *Store) ScoreReport() (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return Report{}, ErrNoCurrent
	}
	return Score(*s.current), nil
}

// Submit sends the current inspection with its answers to the remote service.
// Local state is only touched once the service accepted it.
func (s *Store) Submit(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return ErrNoCurrent
	}
	if s.current.Status != model.StatusDraft {
		s.mu.Unlock()
		return ErrNotDraft
	}
	if !Complete(*s.current) {
		s.mu.Unlock()
		return ErrValidation
	}
	snapshot := s.current.Clone()
	s.mu.Unlock()

	entry := log.WithFields(map[string]any{"inspection": snapshot.ID})

	err := s.remote.Post(ctx, httpx.SubmitInspectionPath, model.InspectionEnvelope{Inspection: snapshot}, nil)
	if err != nil {
		entry.WithError(err).Warn("submit rejected")
		return errors.Wrap(err, "submit inspection")
	}

	if err = database.MarkSubmitted(ctx, s.db, snapshot); err != nil {
		entry.WithError(err).Error("submitted inspection not recorded locally")
		return errors.Wrap(err, "record submitted inspection")
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == snapshot.ID {
		snapshot.Status = model.StatusSubmitted
		s.current = &snapshot
	}
	s.mu.Unlock()
	entry.WithField("score", FinalScore(snapshot)).Info("inspection submitted")

	if err = s.LoadAll(ctx); err != nil {
		entry.WithError(err).Warn("inspection list not refreshed after submit")
	}
	return nil
}
