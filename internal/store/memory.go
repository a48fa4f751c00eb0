package store

import (
	"sync"

	"github.com/RomaniumSSS/My-first-project/internal/models"
)

// InMemoryStore is a thread-safe in-memory Store implementation.
type InMemoryStore struct {
	mu       sync.RWMutex
	users    map[string]models.User // keyed by user ID
	goals    map[string]models.Goal // keyed by goal ID
	goalSeq  []string               // goal IDs in insertion order
	checkins []models.CheckIn
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users: make(map[string]models.User),
		goals: make(map[string]models.Goal),
	}
}

// GetUserByChatID retrieves a user by transport identity.
func (s *InMemoryStore) GetUserByChatID(chatID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ChatID == chatID {
			copied := u
			return &copied, nil
		}
	}
	return nil, nil
}

// CreateUser persists a new user record.
func (s *InMemoryStore) CreateUser(u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

// SaveUser updates an existing user record.
func (s *InMemoryStore) SaveUser(u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return models.ErrUserNotFound
	}
	s.users[u.ID] = u
	return nil
}

// CreateGoal persists a new goal record.
func (s *InMemoryStore) CreateGoal(g models.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[g.ID] = g
	s.goalSeq = append(s.goalSeq, g.ID)
	return nil
}

// ListGoals returns the user's goals with the given status, oldest first.
func (s *InMemoryStore) ListGoals(userID string, status models.GoalStatus) ([]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var goals []models.Goal
	for _, id := range s.goalSeq {
		g := s.goals[id]
		if g.UserID == userID && g.Status == status {
			goals = append(goals, g)
		}
	}
	return goals, nil
}

// GetGoalOwnedBy retrieves a goal only if it belongs to the given user.
func (s *InMemoryStore) GetGoalOwnedBy(goalID, userID string) (*models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[goalID]
	if !ok || g.UserID != userID {
		return nil, nil
	}
	copied := g
	return &copied, nil
}

// CreateCheckIn persists a new check-in record.
func (s *InMemoryStore) CreateCheckIn(c models.CheckIn) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkins = append(s.checkins, c)
	return nil
}

// CheckIns returns all stored check-ins. Used by tests.
func (s *InMemoryStore) CheckIns() []models.CheckIn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CheckIn, len(s.checkins))
	copy(out, s.checkins)
	return out
}

// Close releases resources; a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
