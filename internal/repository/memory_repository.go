package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/model"
)

// MemoryRepository is an in-process Repository used by session tests so
// the Event Session's logic can be exercised without a database.
type MemoryRepository struct {
	mu           sync.Mutex
	events       map[uuid.UUID]*model.Event
	eventsByCode map[string]uuid.UUID
	segments     map[uuid.UUID]*model.Segment
	questions    map[uuid.UUID][]model.Question
	participants map[uuid.UUID]*model.Participant
	scores       map[uuid.UUID]map[uuid.UUID]*model.SegmentScore // segmentID -> participantID -> score
	joinAttempts []model.JoinAttempt
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		events:       make(map[uuid.UUID]*model.Event),
		eventsByCode: make(map[string]uuid.UUID),
		segments:     make(map[uuid.UUID]*model.Segment),
		questions:    make(map[uuid.UUID][]model.Question),
		participants: make(map[uuid.UUID]*model.Participant),
		scores:       make(map[uuid.UUID]map[uuid.UUID]*model.SegmentScore),
	}
}

func (m *MemoryRepository) PutEvent(e *model.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = e
	m.eventsByCode[e.JoinCode] = e.ID
}

func (m *MemoryRepository) PutSegment(s *model.Segment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments[s.ID] = s
}

func (m *MemoryRepository) PutQuestions(segmentID uuid.UUID, qs []model.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[segmentID] = qs
}

func (m *MemoryRepository) GetEvent(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

func (m *MemoryRepository) GetEventByCode(ctx context.Context, code string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.eventsByCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	return m.events[id], nil
}

func (m *MemoryRepository) CreateEvent(ctx context.Context, event *model.Event) error {
	m.PutEvent(event)
	return nil
}

func (m *MemoryRepository) SetEventStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.events[id]; ok {
		e.Status = status
	}
	return nil
}

func (m *MemoryRepository) SetEventJoinLock(ctx context.Context, id uuid.UUID, locked bool, lockedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.events[id]; ok {
		e.JoinLocked = locked
		e.JoinLockedAt = lockedAt
	}
	return nil
}

func (m *MemoryRepository) FindActiveEventForDevice(ctx context.Context, deviceID string, excludeEventID uuid.UUID) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants {
		if p.DeviceID != deviceID || p.EventID == excludeEventID {
			continue
		}
		if e, ok := m.events[p.EventID]; ok && (e.Status == model.EventStatusScheduled || e.Status == model.EventStatusLive) {
			return e, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) GetSegment(ctx context.Context, id uuid.UUID) (*model.Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.segments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *MemoryRepository) GetSegmentsByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Segment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Segment
	for _, s := range m.segments {
		if s.EventID == eventID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *MemoryRepository) SetSegmentStatus(ctx context.Context, id uuid.UUID, status model.SegmentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.segments[id]; ok {
		s.Status = status
	}
	return nil
}

func (m *MemoryRepository) GetQuestionsBySegment(ctx context.Context, segmentID uuid.UUID) ([]model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Question(nil), m.questions[segmentID]...), nil
}

func (m *MemoryRepository) CountEventQuestions(ctx context.Context, eventID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, s := range m.segments {
		if s.EventID == eventID {
			count += len(m.questions[s.ID])
		}
	}
	return count, nil
}

func (m *MemoryRepository) AggregateEventQuestions(ctx context.Context, eventID uuid.UUID, max int) ([]model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.Question
	for _, s := range m.segments {
		if s.EventID == eventID {
			all = append(all, m.questions[s.ID]...)
		}
	}
	if max > 0 && max < len(all) {
		all = all[:max]
	}
	return all, nil
}

func (m *MemoryRepository) GetParticipantByDevice(ctx context.Context, eventID uuid.UUID, deviceID string) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants {
		if p.EventID == eventID && p.DeviceID == deviceID {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) GetParticipant(ctx context.Context, id uuid.UUID) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *MemoryRepository) GetParticipantsByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Participant
	for _, p := range m.participants {
		if p.EventID == eventID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *MemoryRepository) CreateParticipant(ctx context.Context, p *model.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participants[p.ID] = p
	return nil
}

func (m *MemoryRepository) UpdateParticipant(ctx context.Context, p *model.Participant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participants[p.ID] = p
	return nil
}

func (m *MemoryRepository) UpsertSegmentScore(ctx context.Context, segmentID, participantID uuid.UUID, deltaScore int, correctInc int, responseTimeIncMs int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bySegment, ok := m.scores[segmentID]
	if !ok {
		bySegment = make(map[uuid.UUID]*model.SegmentScore)
		m.scores[segmentID] = bySegment
	}
	s, ok := bySegment[participantID]
	if !ok {
		s = model.NewSegmentScore(segmentID, participantID)
		bySegment[participantID] = s
	}
	s.Score += deltaScore
	s.QuestionsAnswered++
	s.QuestionsCorrect += correctInc
	s.TotalResponseTimeMs += responseTimeIncMs
	return nil
}

func (m *MemoryRepository) GetSegmentLeaderboard(ctx context.Context, segmentID uuid.UUID) ([]model.SegmentScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.SegmentScore
	for _, s := range m.scores[segmentID] {
		out = append(out, *s)
	}
	return out, nil
}

func (m *MemoryRepository) GetEventLeaderboard(ctx context.Context, eventID uuid.UUID) ([]model.SegmentScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := make(map[uuid.UUID]*model.SegmentScore)
	for _, s := range m.segments {
		if s.EventID != eventID {
			continue
		}
		for pid, score := range m.scores[s.ID] {
			t, ok := totals[pid]
			if !ok {
				t = &model.SegmentScore{ParticipantID: pid}
				totals[pid] = t
			}
			t.Score += score.Score
			t.QuestionsAnswered += score.QuestionsAnswered
			t.QuestionsCorrect += score.QuestionsCorrect
			t.TotalResponseTimeMs += score.TotalResponseTimeMs
		}
	}
	var out []model.SegmentScore
	for _, t := range totals {
		out = append(out, *t)
	}
	return out, nil
}

func (m *MemoryRepository) RecordJoinAttempt(ctx context.Context, attempt *model.JoinAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joinAttempts = append(m.joinAttempts, *attempt)
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
