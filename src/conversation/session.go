package conversation

import (
	"errors"
	"sync"
	"time"

	"market-assistant/src/models"

	"github.com/google/uuid"
)

var (
	ErrSessionBusy     = errors.New("a message is already being processed for this session")
	ErrSessionNotFound = errors.New("session not found")
)

// Welcome messages
const (
	WelcomeGreeting   = "Hello! I'm your Indian Stock Market Assistant powered by vector research. How can I help you today?"
	WelcomeDisclaimer = "I can analyze the current stock chart and provide information on whether you should buy or sell, at what price, and any patterns I detect."
	WelcomeHint       = "Simply ask me to 'analyze this chart' or 'should I buy or sell?'"
)

// Session is one append-only conversation log.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu          sync.Mutex
	messages    []models.MMessage
	busy        bool
	userTraffic bool
}

func newSession() *Session {
	s := &Session{ID: uuid.NewString(), CreatedAt: time.Now()}
	s.append(
		newMessage(models.RoleAssistant, models.KindPlain, WelcomeGreeting),
		newMessage(models.RoleAssistant, models.KindWarning, WelcomeDisclaimer),
		newMessage(models.RoleAssistant, models.KindInfo, WelcomeHint),
	)
	return s
}

func newMessage(role, kind, text string) models.MMessage {
	return models.MMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Kind:      kind,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// -----------------------------------------------------------------------------

// Messages returns a copy of the log.
func (s *Session) Messages() []models.MMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) append(msgs ...models.MMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range msgs {
		if m.Role == models.RoleUser {
			s.userTraffic = true
		}
		s.messages = append(s.messages, m)
	}
}

func (s *Session) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// Busy reports whether a submission is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) hasUserTraffic() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userTraffic
}

// -----------------------------------------------------------------------------
// SessionManager
// -----------------------------------------------------------------------------

type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Create opens a session seeded with the welcome messages.
func (m *SessionManager) Create() *Session {
	s := newSession()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// NotifySelectionChanged tells every session with user traffic that the
// displayed symbol changed.
func (m *SessionManager) NotifySelectionChanged(symbol string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if !s.hasUserTraffic() {
			continue
		}
		s.append(newMessage(models.RoleAssistant, models.KindInfo,
			"Stock changed to "+symbol+". Ask me to analyze this chart for updated information."))
	}
}
