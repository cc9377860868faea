package mock

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/lore/schema"
)

// Service is an in-memory lore API backend.
type Service struct {
	Secret    []byte
	Email     string
	Password  string
	PageSize  int
	AccessTTL time.Duration

	// Override handlers; nil means the default handler is used.
	LoginHandler        http.HandlerFunc
	RegistrationHandler http.HandlerFunc
	RefreshHandler      http.HandlerFunc
	LogoutHandler       http.HandlerFunc

	// OnUnauthorized is called before a protected endpoint answers 401.
	OnUnauthorized func(r *http.Request)
	// OnRefresh is called when the refresh endpoint is hit, before the token is checked.
	OnRefresh func(r *http.Request)

	mu           sync.Mutex
	access       string
	refresh      string
	user         schema.User
	users        map[string]*schema.User
	passwords    map[string]string
	groups       []schema.Group
	quotes       []schema.Quote
	achievements map[int][]schema.Achievement
	achievers    map[int]map[int]bool
	seen         map[string][]string
	nextID       int

	refreshCalls atomic.Int32
}

// NewService creates a backend with a single registered user and no data.
func NewService() *Service {
	user := schema.User{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@lore.test"}
	return &Service{
		Secret:       []byte("lore-test-secret"),
		Email:        user.Email,
		Password:     "correct-horse",
		PageSize:     2,
		AccessTTL:    5 * time.Minute,
		user:         user,
		users:        map[string]*schema.User{user.Email: &user},
		passwords:    map[string]string{user.Email: "correct-horse"},
		achievements: map[int][]schema.Achievement{},
		achievers:    map[int]map[int]bool{},
		seen:         map[string][]string{},
		nextID:       1000,
	}
}

// Accept makes access and refresh the only valid tokens; empty values accept nothing.
func (s *Service) Accept(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	s.refresh = refresh
}

// Tokens returns the currently valid pair
func (s *Service) Tokens() schema.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schema.TokenPair{Access: s.access, Refresh: s.refresh}
}

// Expire invalidates the access token, keeping the refresh token valid.
func (s *Service) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
}

// Issue creates and accepts a new JWT pair for the default user.
func (s *Service) Issue() (*schema.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issue(s.user.ID)
}

func (s *Service) issue(userID int) (*schema.TokenPair, error) {
	access, err := s.createJWT(userID, "access", s.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.createJWT(userID, "refresh", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	s.access, s.refresh = access, refresh
	return &schema.TokenPair{Access: access, Refresh: refresh}, nil
}

// RefreshCalls returns number of refresh endpoint hits
func (s *Service) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// Seen returns bearer tokens (empty when absent) received on path, in arrival order.
func (s *Service) Seen(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen[path]...)
}

// User returns the default user
func (s *Service) User() schema.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// AddGroups appends groups served by the group list endpoint.
func (s *Service) AddGroups(groups ...schema.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = append(s.groups, groups...)
}

// AddQuotes appends quotes served by the quote list endpoint.
func (s *Service) AddQuotes(quotes ...schema.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = append(s.quotes, quotes...)
}

// AddAchievements appends achievements of a group.
func (s *Service) AddAchievements(groupID int, achievements ...schema.Achievement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.achievements[groupID] = append(s.achievements[groupID], achievements...)
}

// Quotes returns a snapshot of stored quotes
func (s *Service) Quotes() []schema.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schema.Quote(nil), s.quotes...)
}

// Achieved reports whether userID achieved the achievement
func (s *Service) Achieved(achievementID, userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.achievers[achievementID][userID]
}

func (s *Service) id() int {
	s.nextID++
	return s.nextID
}
