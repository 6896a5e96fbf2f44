package submission

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/GriffinCanCode/formwork/internal/form/controller"
	"github.com/GriffinCanCode/formwork/internal/shared/id"
	"go.uber.org/zap"
)

// DefaultLimit is the number of records a Store keeps by default.
const DefaultLimit = 1000

// Record is one stored submission.
type Record struct {
	ID        id.SubmissionID `json:"id"`
	Form      string          `json:"form"`
	Values    map[string]any  `json:"values"`
	CreatedAt time.Time       `json:"created_at"`
}

// Request is a form request that carries its submission id.
type Request struct {
	form.Request
	ID id.SubmissionID
}

// SubmissionID returns the id of the submission.
func (r Request) SubmissionID() id.SubmissionID { return r.ID }

// Identified is implemented by requests that carry a submission id.
type Identified interface {
	SubmissionID() id.SubmissionID
}

// Store holds submission records in memory.
type Store struct {
	mu      sync.RWMutex
	records map[id.SubmissionID]*Record
	order   []id.SubmissionID
	limit   int
	logger  *zap.Logger
	now     func() time.Time
}

// NewStore creates a store keeping at most limit records.
func NewStore(limit int, logger *zap.Logger) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		records: make(map[id.SubmissionID]*Record),
		limit:   limit,
		logger:  logger,
		now:     time.Now,
	}
}

// Write implements form.Writer. model must be the *Record being filled.
func (s *Store) Write(model any, target string, value any) error {
	r, ok := model.(*Record)
	if !ok {
		return fmt.Errorf("submission store cannot write to %T", model)
	}
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	r.Values[target] = value
	return nil
}

// Save stores r, evicting the oldest record beyond the limit.
func (s *Store) Save(r *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[r.ID]; !exists {
		s.order = append(s.order, r.ID)
	}
	s.records[r.ID] = r
	for len(s.order) > s.limit {
		delete(s.records, s.order[0])
		s.order = s.order[1:]
	}
}

// Get returns the record with the given id.
func (s *Store) Get(sid id.SubmissionID) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[sid]
	return r, ok
}

// List returns the records of a form, oldest first. An empty name lists
// every record.
func (s *Store) List(formName string) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Record, 0, len(s.order))
	for _, sid := range s.order {
		if r := s.records[sid]; formName == "" || r.Form == formName {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Handler returns an action handler that persists the submitted form.
func (s *Store) Handler() controller.Handler {
	return func(w *form.Widget, d *form.Data) error {
		root := d
		for root.Parent() != nil {
			root = root.Parent()
		}

		sid := id.NewSubmissionID()
		if r, ok := root.Request().(Identified); ok && r.SubmissionID() != "" {
			sid = r.SubmissionID()
		}

		rec := &Record{
			ID:        sid,
			Form:      root.Widget().Name(),
			Values:    make(map[string]any),
			CreatedAt: s.now(),
		}
		if err := form.Persist(root, rec, s); err != nil {
			return err
		}
		s.Save(rec)

		s.logger.Info("Submission stored",
			zap.String("form", rec.Form),
			zap.String("submission", sid.String()),
			zap.Int("values", len(rec.Values)))
		return nil
	}
}
