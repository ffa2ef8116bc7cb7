package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rmatrack/backend/internal/models"
)

type UndoKind string

const (
	UndoRestoreStatus         UndoKind = "restore_status"
	UndoRestoreNotes          UndoKind = "restore_notes"
	UndoRestoreCreditApproval UndoKind = "restore_credit_approval"
)

// UndoSnapshot is the single reversible action held for a session. Kind
// selects which field group is meaningful.
type UndoSnapshot struct {
	Kind  UndoKind `json:"kind"`
	RMAID uint     `json:"rmaId"`

	// restore_status
	OldStatus models.RMAStatus `json:"oldStatus,omitempty"`
	NewStatus models.RMAStatus `json:"newStatus,omitempty"`

	// restore_notes
	OldNotes string `json:"oldNotes,omitempty"`

	// restore_credit_approval
	CreditApproved   bool       `json:"creditApproved,omitempty"`
	CreditApprovedOn *time.Time `json:"creditApprovedOn,omitempty"`
	CreditApprovedBy *uint      `json:"creditApprovedBy,omitempty"`
}

// UndoStore holds at most one snapshot per session key. Put overwrites any
// existing snapshot; Take returns the snapshot and clears the slot in one
// step, or (nil, nil) when the slot is empty.
type UndoStore interface {
	Put(ctx context.Context, session string, snap UndoSnapshot) error
	Take(ctx context.Context, session string) (*UndoSnapshot, error)
}

// memoryUndoStore is the default store and the test double.
type memoryUndoStore struct {
	mu    sync.Mutex
	slots map[string]UndoSnapshot
}

// NewMemoryUndoStore creates an in-process undo store.
func NewMemoryUndoStore() UndoStore {
	return &memoryUndoStore{slots: make(map[string]UndoSnapshot)}
}

func (s *memoryUndoStore) Put(_ context.Context, session string, snap UndoSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[session] = snap
	return nil
}

func (s *memoryUndoStore) Take(_ context.Context, session string) (*UndoSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.slots[session]
	if !ok {
		return nil, nil
	}
	delete(s.slots, session)
	return &snap, nil
}

// redisUndoStore keeps undo slots in Redis so they survive server restarts
// and are shared across replicas.
type redisUndoStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisUndoStore creates a Redis-backed undo store. Slots expire after ttl.
func NewRedisUndoStore(client *redis.Client, ttl time.Duration) UndoStore {
	return &redisUndoStore{client: client, ttl: ttl}
}

func (s *redisUndoStore) key(session string) string {
	return "undo:" + session
}

func (s *redisUndoStore) Put(ctx context.Context, session string, snap UndoSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode undo snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store undo snapshot: %w", err)
	}
	return nil
}

func (s *redisUndoStore) Take(ctx context.Context, session string) (*UndoSnapshot, error) {
	payload, err := s.client.GetDel(ctx, s.key(session)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read undo snapshot: %w", err)
	}
	var snap UndoSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode undo snapshot: %w", err)
	}
	return &snap, nil
}
