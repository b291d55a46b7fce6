// Package memstore is an in-memory implementation of the service stores.
// It mirrors the PostgreSQL behaviour the services rely on: a unique email,
// a (user, event) primary key, restricted deletes, and an Admit that
// serializes per event the way SELECT ... FOR UPDATE does.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/event-registrations/internal/apperror"
	"github.com/Shivanand-hulikatti/event-registrations/internal/model"
	"github.com/Shivanand-hulikatti/event-registrations/internal/repository"
)

type regKey struct{ userID, eventID int64 }

// Store holds users, events and registrations in memory.
type Store struct {
	mu            sync.RWMutex
	nextUserID    int64
	nextEventID   int64
	users         map[int64]model.User
	events        map[int64]model.Event
	registrations map[regKey]model.Registration
	seq           map[regKey]int64
	nextSeq       int64
	failWith      error

	lockMu     sync.Mutex
	eventLocks map[int64]*sync.Mutex

	now func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:         make(map[int64]model.User),
		events:        make(map[int64]model.Event),
		registrations: make(map[regKey]model.Registration),
		seq:           make(map[regKey]int64),
		eventLocks:    make(map[int64]*sync.Mutex),
		now:           time.Now,
	}
}

// FailWith makes every subsequent operation return err. Pass nil to clear.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) failure() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failWith
}

// Users returns the user store view.
func (s *Store) Users() *Users { return &Users{s: s} }

// Events returns the event store view.
func (s *Store) Events() *Events { return &Events{s: s} }

// Registrations returns the registration store view.
func (s *Store) Registrations() *Registrations { return &Registrations{s: s} }

// Users implements service.UserStore.
type Users struct{ s *Store }

func (u *Users) Create(ctx context.Context, name, email string) (*model.User, error) {
	if err := u.s.failure(); err != nil {
		return nil, err
	}
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == email {
			return nil, apperror.ErrEmailTaken
		}
	}
	s.nextUserID++
	user := model.User{ID: s.nextUserID, Name: name, Email: email}
	s.users[user.ID] = user
	return &user, nil
}

func (u *Users) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if err := u.s.failure(); err != nil {
		return nil, err
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	return &user, nil
}

func (u *Users) List(ctx context.Context) ([]model.User, error) {
	if err := u.s.failure(); err != nil {
		return nil, err
	}
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	var users []model.User
	for _, user := range u.s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (u *Users) DeleteByID(ctx context.Context, id int64) error {
	if err := u.s.failure(); err != nil {
		return err
	}
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return apperror.ErrUserNotFound
	}
	for k := range s.registrations {
		if k.userID == id {
			return apperror.ErrStillReferenced
		}
	}
	delete(s.users, id)
	return nil
}

// Events implements service.EventStore.
type Events struct{ s *Store }

func (e *Events) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	if err := e.s.failure(); err != nil {
		return nil, err
	}
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEventID++
	event := model.Event{
		ID:       s.nextEventID,
		Title:    req.Title,
		DateTime: req.DateTime.UTC(),
		Location: req.Location,
		Capacity: req.Capacity,
	}
	s.events[event.ID] = event
	return &event, nil
}

func (e *Events) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	if err := e.s.failure(); err != nil {
		return nil, err
	}
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	event, ok := e.s.events[id]
	if !ok {
		return nil, apperror.ErrEventNotFound
	}
	return &event, nil
}

func (e *Events) List(ctx context.Context) ([]model.Event, error) {
	if err := e.s.failure(); err != nil {
		return nil, err
	}
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	var events []model.Event
	for _, event := range e.s.events {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

func (e *Events) ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error) {
	all, err := e.List(ctx)
	if err != nil {
		return nil, err
	}
	var events []model.Event
	for _, event := range all {
		if event.DateTime.After(now) {
			events = append(events, event)
		}
	}
	sortUpcoming(events)
	return events, nil
}

func (e *Events) DeleteByID(ctx context.Context, id int64) error {
	if err := e.s.failure(); err != nil {
		return err
	}
	s := e.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return apperror.ErrEventNotFound
	}
	for k := range s.registrations {
		if k.eventID == id {
			return apperror.ErrStillReferenced
		}
	}
	delete(s.events, id)
	return nil
}

func sortUpcoming(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].DateTime.Equal(events[j].DateTime) {
			return events[i].DateTime.Before(events[j].DateTime)
		}
		return events[i].Location < events[j].Location
	})
}

// Registrations implements service.RegistrationStore.
type Registrations struct{ s *Store }

var _ repository.AdmissionTx = (*admission)(nil)

func (s *Store) eventLock(eventID int64) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.eventLocks[eventID]
	if !ok {
		l = &sync.Mutex{}
		s.eventLocks[eventID] = l
	}
	return l
}

// Admit holds the event's lock for the duration of fn. Inserts made through
// the AdmissionTx become visible only if fn returns nil.
func (r *Registrations) Admit(ctx context.Context, eventID int64, fn func(ctx context.Context, tx repository.AdmissionTx) error) error {
	if err := r.s.failure(); err != nil {
		return err
	}
	lock := r.s.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	r.s.mu.RLock()
	event, ok := r.s.events[eventID]
	r.s.mu.RUnlock()
	if !ok {
		return apperror.ErrEventNotFound
	}

	tx := &admission{s: r.s, event: event}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, reg := range tx.pending {
		k := regKey{reg.UserID, reg.EventID}
		if _, dup := r.s.registrations[k]; dup {
			return apperror.ErrAlreadyRegistered
		}
		if _, ok := r.s.users[reg.UserID]; !ok {
			return apperror.ErrUserNotFound
		}
	}
	for _, reg := range tx.pending {
		k := regKey{reg.UserID, reg.EventID}
		r.s.nextSeq++
		r.s.registrations[k] = reg
		r.s.seq[k] = r.s.nextSeq
	}
	return nil
}

func (r *Registrations) Delete(ctx context.Context, userID, eventID int64) error {
	if err := r.s.failure(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := regKey{userID, eventID}
	if _, ok := r.s.registrations[k]; !ok {
		return apperror.ErrRegistrationNotFound
	}
	delete(r.s.registrations, k)
	delete(r.s.seq, k)
	return nil
}

func (r *Registrations) Count(ctx context.Context, eventID int64) (int, error) {
	if err := r.s.failure(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.countLocked(eventID), nil
}

func (r *Registrations) Exists(ctx context.Context, userID, eventID int64) (bool, error) {
	if err := r.s.failure(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.registrations[regKey{userID, eventID}]
	return ok, nil
}

func (r *Registrations) ListUsersByEvent(ctx context.Context, eventID int64) ([]model.User, error) {
	if err := r.s.failure(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var keys []regKey
	for k := range r.s.registrations {
		if k.eventID == eventID {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return r.s.seq[keys[i]] < r.s.seq[keys[j]] })
	users := make([]model.User, 0, len(keys))
	for _, k := range keys {
		users = append(users, r.s.users[k.userID])
	}
	return users, nil
}

func (r *Registrations) ListEventsByUser(ctx context.Context, userID int64) ([]model.Event, error) {
	if err := r.s.failure(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	var events []model.Event
	for k := range r.s.registrations {
		if k.userID == userID {
			events = append(events, r.s.events[k.eventID])
		}
	}
	r.s.mu.RUnlock()
	sortUpcoming(events)
	return events, nil
}

func (s *Store) countLocked(eventID int64) int {
	n := 0
	for k := range s.registrations {
		if k.eventID == eventID {
			n++
		}
	}
	return n
}

type admission struct {
	s       *Store
	event   model.Event
	pending []model.Registration
}

func (a *admission) Event() model.Event { return a.event }

func (a *admission) Exists(ctx context.Context, userID int64) (bool, error) {
	for _, reg := range a.pending {
		if reg.UserID == userID {
			return true, nil
		}
	}
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	_, ok := a.s.registrations[regKey{userID, a.event.ID}]
	return ok, nil
}

func (a *admission) Count(ctx context.Context) (int, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	return a.s.countLocked(a.event.ID) + len(a.pending), nil
}

func (a *admission) Insert(ctx context.Context, userID int64) (*model.Registration, error) {
	if exists, _ := a.Exists(ctx, userID); exists {
		return nil, apperror.ErrAlreadyRegistered
	}
	a.s.mu.RLock()
	_, ok := a.s.users[userID]
	a.s.mu.RUnlock()
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	reg := model.Registration{UserID: userID, EventID: a.event.ID, RegisteredAt: a.s.now().UTC()}
	a.pending = append(a.pending, reg)
	return &reg, nil
}
