package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
)

// The in-memory stores mirror the repository contracts, including their
// sentinel errors, so services and handlers can be tested without a database.

// MemoryUsers is an in-memory user store
type MemoryUsers struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.User
}

// NewMemoryUsers creates an empty user store
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{nextID: 1, users: make(map[uint]models.User)}
}

func (m *MemoryUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Username, user.Username) {
			return repository.ErrUserExists
		}
	}
	now := time.Now().UTC()
	user.ID = m.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	m.nextID++
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MemoryUsers) List(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b models.User) int { return int(b.ID) - int(a.ID) })
	return users, nil
}

func (m *MemoryUsers) Update(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	for _, u := range m.users {
		if u.ID != user.ID && strings.EqualFold(u.Username, user.Username) {
			return repository.ErrUserExists
		}
	}
	existing.Username = user.Username
	existing.Email = user.Email
	existing.Role = user.Role
	existing.IsActive = user.IsActive
	existing.UpdatedAt = time.Now().UTC()
	m.users[user.ID] = existing
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (m *MemoryUsers) UpdatePassword(_ context.Context, userID uint, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	m.users[userID] = u
	return nil
}

func (m *MemoryUsers) UpdateLastLogin(_ context.Context, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u, ok := m.users[userID]; ok {
		now := time.Now().UTC()
		u.LastLoginAt = &now
		m.users[userID] = u
	}
	return nil
}

func (m *MemoryUsers) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MemoryUsers) CountByRole(_ context.Context, role models.Role) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, u := range m.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

// MemoryLookups is an in-memory catalog seeded like the migrations
type MemoryLookups struct {
	mu        sync.Mutex
	nextID    int
	scamTypes []models.ScamType
	states    []models.State
	inUse     func(scamTypeID int) bool
}

// SeedScamTypes and SeedStates match the rows inserted by the migrations, in
// id order.
var (
	SeedScamTypes = []string{
		"Investment Scam", "Love Scam", "Phishing", "Online Purchase",
		"Job Scam", "Loan Scam", "Impersonation", "Other",
	}
	SeedStates = [][2]string{
		{"Johor", "JHR"}, {"Kedah", "KDH"}, {"Kelantan", "KTN"}, {"Kuala Lumpur", "KUL"},
		{"Labuan", "LBN"}, {"Malacca", "MLK"}, {"Negeri Sembilan", "NSN"}, {"Pahang", "PHG"},
		{"Penang", "PNG"}, {"Perak", "PRK"}, {"Perlis", "PLS"}, {"Putrajaya", "PJY"},
		{"Sabah", "SBH"}, {"Sarawak", "SWK"}, {"Selangor", "SGR"}, {"Terengganu", "TRG"},
	}
)

// NewMemoryLookups creates a seeded catalog
func NewMemoryLookups() *MemoryLookups {
	m := &MemoryLookups{}
	for i, name := range SeedScamTypes {
		m.scamTypes = append(m.scamTypes, models.ScamType{ID: i + 1, Name: name, CreatedAt: time.Now().UTC()})
	}
	for i, s := range SeedStates {
		m.states = append(m.states, models.State{ID: i + 1, Name: s[0], Code: s[1]})
	}
	m.nextID = len(m.scamTypes) + 1
	return m
}

// ScamTypeID returns the id of a seeded scam type, or 0
func (m *MemoryLookups) ScamTypeID(name string) int {
	st, _ := m.FindScamTypeByName(context.Background(), name)
	if st == nil {
		return 0
	}
	return st.ID
}

// StateID returns the id of a seeded state, or 0
func (m *MemoryLookups) StateID(name string) int {
	s, _ := m.FindStateByName(context.Background(), name)
	if s == nil {
		return 0
	}
	return s.ID
}

func (m *MemoryLookups) ListScamTypes(_ context.Context) ([]models.ScamType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := slices.Clone(m.scamTypes)
	slices.SortFunc(out, func(a, b models.ScamType) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *MemoryLookups) ListStates(_ context.Context) ([]models.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := slices.Clone(m.states)
	slices.SortFunc(out, func(a, b models.State) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *MemoryLookups) GetScamType(_ context.Context, id int) (*models.ScamType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, st := range m.scamTypes {
		if st.ID == id {
			return &st, nil
		}
	}
	return nil, repository.ErrLookupNotFound
}

func (m *MemoryLookups) FindScamTypeByName(_ context.Context, name string) (*models.ScamType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, st := range m.scamTypes {
		if strings.EqualFold(st.Name, name) {
			return &st, nil
		}
	}
	return nil, repository.ErrLookupNotFound
}

func (m *MemoryLookups) FindStateByName(_ context.Context, name string) (*models.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.states {
		if strings.EqualFold(s.Name, name) {
			return &s, nil
		}
	}
	for _, s := range m.states {
		if strings.EqualFold(s.Code, name) {
			return &s, nil
		}
	}
	return nil, repository.ErrLookupNotFound
}

func (m *MemoryLookups) CreateScamType(_ context.Context, st *models.ScamType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.scamTypes {
		if strings.EqualFold(existing.Name, st.Name) {
			return repository.ErrLookupExists
		}
	}
	st.ID = m.nextID
	st.CreatedAt = time.Now().UTC()
	m.nextID++
	m.scamTypes = append(m.scamTypes, *st)
	return nil
}

func (m *MemoryLookups) UpdateScamType(_ context.Context, st *models.ScamType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, existing := range m.scamTypes {
		if existing.ID == st.ID {
			idx = i
		} else if strings.EqualFold(existing.Name, st.Name) {
			return repository.ErrLookupExists
		}
	}
	if idx < 0 {
		return repository.ErrLookupNotFound
	}
	m.scamTypes[idx].Name = st.Name
	m.scamTypes[idx].Description = st.Description
	return nil
}

func (m *MemoryLookups) DeleteScamType(_ context.Context, id int) error {
	m.mu.Lock()
	inUse := m.inUse
	m.mu.Unlock()
	if inUse != nil && inUse(id) {
		return repository.ErrLookupInUse
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, st := range m.scamTypes {
		if st.ID == id {
			m.scamTypes = slices.Delete(m.scamTypes, i, i+1)
			return nil
		}
	}
	return repository.ErrLookupNotFound
}

func (m *MemoryLookups) scamTypeName(id *int) *string {
	if id == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range m.scamTypes {
		if st.ID == *id {
			name := st.Name
			return &name
		}
	}
	return nil
}

func (m *MemoryLookups) stateName(id *int) *string {
	if id == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.states {
		if s.ID == *id {
			name := s.Name
			return &name
		}
	}
	return nil
}

func (m *MemoryLookups) exists(scamTypeID, stateID *int) bool {
	return (scamTypeID == nil || m.scamTypeName(scamTypeID) != nil) &&
		(stateID == nil || m.stateName(stateID) != nil)
}
