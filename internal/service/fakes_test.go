package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vietanh2810/event-ticketing-api/internal/config"
	"github.com/vietanh2810/event-ticketing-api/internal/domain"
	"github.com/vietanh2810/event-ticketing-api/internal/pkg/qrcode"
)

// memStore is an in-memory stand-in for the event, ticket and participant
// tables, including the slug and token unique constraints and the
// delete cascade.
type memStore struct {
	mu           sync.Mutex
	nextID       uint
	events       map[uint]domain.Event
	tickets      []domain.Ticket
	participants []domain.Participant
	pingErr      error
	createErr    error
}

func newMemStore() *memStore {
	return &memStore{
		events: make(map[uint]domain.Event),
	}
}

func (m *memStore) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *memStore) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return domain.Event{}, m.createErr
	}
	for _, e := range m.events {
		if e.Slug == event.Slug {
			return domain.Event{}, ErrSlugConflict
		}
	}

	m.nextID++
	event.ID = m.nextID
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	m.events[event.ID] = event

	return event, nil
}

func (m *memStore) Update(ctx context.Context, event domain.Event) (domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[event.ID]; !ok {
		return domain.Event{}, ErrEventNotFound
	}
	for id, e := range m.events {
		if id != event.ID && e.Slug == event.Slug {
			return domain.Event{}, ErrSlugConflict
		}
	}

	event.UpdatedAt = time.Now()
	m.events[event.ID] = event

	return event, nil
}

func (m *memStore) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return domain.Event{}, ErrEventNotFound
	}

	return event, nil
}

func (m *memStore) SlugExists(ctx context.Context, slug string, excludeID *uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, e := range m.events {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if e.Slug == slug {
			return true, nil
		}
	}

	return false, nil
}

func (m *memStore) Delete(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(m.events, id)

	removed := make(map[uint]bool)
	kept := m.tickets[:0]
	for _, t := range m.tickets {
		if t.EventID == id {
			removed[t.ID] = true
			continue
		}
		kept = append(kept, t)
	}
	m.tickets = kept

	participants := m.participants[:0]
	for _, p := range m.participants {
		if !removed[p.TicketID] {
			participants = append(participants, p)
		}
	}
	m.participants = participants

	return nil
}

func (m *memStore) ListWithStats(ctx context.Context) ([]domain.EventSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	summaries := make([]domain.EventSummary, 0, len(m.events))
	for _, e := range m.events {
		summaries = append(summaries, domain.EventSummary{Event: e, TicketStats: m.statsLocked(e.ID)})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID > summaries[j].ID })

	return summaries, nil
}

func (m *memStore) FindWithStats(ctx context.Context, id uint) (domain.EventSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return domain.EventSummary{}, ErrEventNotFound
	}

	return domain.EventSummary{Event: event, TicketStats: m.statsLocked(id)}, nil
}

func (m *memStore) statsLocked(eventID uint) domain.TicketStats {
	var stats domain.TicketStats
	for _, t := range m.tickets {
		if t.EventID != eventID {
			continue
		}
		stats.Total++
		if t.IsVerified {
			stats.Verified++
		} else {
			stats.Available++
		}
	}

	return stats
}

func (m *memStore) ListParticipants(ctx context.Context, eventID uint) ([]domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tickets := make(map[uint]domain.Ticket)
	for _, t := range m.tickets {
		if t.EventID == eventID {
			tickets[t.ID] = t
		}
	}

	var participants []domain.Participant
	for _, p := range m.participants {
		if t, ok := tickets[p.TicketID]; ok {
			p.Token = t.Token
			p.IsVerified = t.IsVerified
			participants = append(participants, p)
		}
	}

	return participants, nil
}

// ticketStore wraps memStore's ticket table behind the TicketRepository and
// TokenLister interfaces.
type ticketStore struct {
	*memStore
	insertErr error
}

func (s *ticketStore) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return domain.Ticket{}, s.insertErr
	}
	for _, t := range s.tickets {
		if t.Token == ticket.Token {
			return domain.Ticket{}, ErrTokenConflict
		}
	}

	s.nextID++
	ticket.ID = s.nextID
	ticket.CreatedAt = time.Now()
	s.tickets = append(s.tickets, ticket)

	return ticket, nil
}

func (s *ticketStore) ListTokensByEvent(ctx context.Context, eventID uint) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tokens []string
	for _, t := range s.tickets {
		if t.EventID == eventID {
			tokens = append(tokens, t.Token)
		}
	}

	return tokens, nil
}

func (s *ticketStore) FindByToken(ctx context.Context, token string) (domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tickets {
		if t.Token == token {
			return t, nil
		}
	}

	return domain.Ticket{}, ErrTicketNotFound
}

func (s *ticketStore) ticketsFor(eventID uint) []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tickets []domain.Ticket
	for _, t := range s.tickets {
		if t.EventID == eventID {
			tickets = append(tickets, t)
		}
	}

	return tickets
}

type fakeFileAssets struct {
	mu      sync.Mutex
	records []domain.FileAssetRecord
	err     error
}

func (f *fakeFileAssets) Record(ctx context.Context, record domain.FileAssetRecord) (domain.FileAssetRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return domain.FileAssetRecord{}, f.err
	}
	record.ID = uint(len(f.records) + 1)
	f.records = append(f.records, record)

	return record, nil
}

// scriptedMinter hands out tokens in order, then falls back to next.
type scriptedMinter struct {
	mu     sync.Mutex
	tokens []string
	next   TokenMinter
	err    error
}

func (m *scriptedMinter) Mint() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return "", m.err
	}
	if len(m.tokens) == 0 {
		return m.next.Mint()
	}
	token := m.tokens[0]
	m.tokens = m.tokens[1:]

	return token, nil
}

var errEncodeFailed = errors.New("forced encode failure")

// flakyEncoder fails the listed calls (1-based) and otherwise encodes for real.
type flakyEncoder struct {
	calls  atomic.Int32
	failOn map[int32]bool
	real   *qrcode.Encoder
}

func newFlakyEncoder(failOn ...int32) *flakyEncoder {
	f := &flakyEncoder{
		failOn: make(map[int32]bool),
		real:   qrcode.NewEncoder(qrcode.DefaultOptions()),
	}
	for _, n := range failOn {
		f.failOn[n] = true
	}

	return f
}

func (f *flakyEncoder) Encode(payload string) ([]byte, error) {
	if f.failOn[f.calls.Add(1)] {
		return nil, errEncodeFailed
	}

	return f.real.Encode(payload)
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		API: &config.APIConfig{
			RegistrationURL: "http://localhost:3000/register",
		},
		Assets: &config.AssetsConfig{
			UploadsDir:     "uploads",
			TicketsDir:     "tickets",
			MaxDesignBytes: 1 << 20,
		},
		Provisioning: &config.ProvisioningConfig{
			Workers:       4,
			Timeout:       time.Minute,
			MaxQuota:      100,
			TokenAttempts: 3,
		},
	}
}
