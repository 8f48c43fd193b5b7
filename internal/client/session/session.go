package session

import (
	"sync"

	"github.com/lunabook/sessionkit/pkg/api"
)

// Status представляет статус сессии. Ровно один статус действует в любой момент.
type Status int

const (
	// StatusUnauthenticated - начальное состояние: пользователь не вошел
	StatusUnauthenticated Status = iota
	// StatusAuthenticated - пользователь вошел и подтвержден
	StatusAuthenticated
	// StatusPendingVerification - пользователь вошел, но email не подтвержден
	StatusPendingVerification
	// StatusError - временная ошибка; следующий переход её затирает
	StatusError
)

// String возвращает имя статуса для логов и вывода
func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	case StatusPendingVerification:
		return "pending_verification"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Session представляет текущее состояние сессии.
// User заполнен только для Authenticated и PendingVerification.
// Err заполнен только для StatusError.
type Session struct {
	User   *api.User
	Err    string
	Status Status
}

// Manager владеет состоянием сессии и является его единственным писателем.
// Остальной код читает состояние через Current или подписку.
type Manager struct {
	mu      sync.RWMutex
	current Session
	subs    map[int]chan Session
	nextSub int
}

// NewManager создает менеджер в состоянии Unauthenticated
func NewManager() *Manager {
	return &Manager{
		current: Session{Status: StatusUnauthenticated},
		subs:    make(map[int]chan Session),
	}
}

// Current возвращает снимок текущего состояния
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Subscribe возвращает канал, в который приходит каждое новое состояние,
// и функцию отписки. Медленный подписчик пропускает промежуточные состояния,
// но не блокирует переходы.
func (m *Manager) Subscribe() (<-chan Session, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++

	ch := make(chan Session, 16)
	m.subs[id] = ch

	unsubscribe := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}

	return ch, unsubscribe
}

// SetAuthenticated переводит сессию в Authenticated с данным пользователем
func (m *Manager) SetAuthenticated(user *api.User) {
	m.transition(Session{Status: StatusAuthenticated, User: user})
}

// SetPendingVerification переводит сессию в PendingVerification
func (m *Manager) SetPendingVerification(user *api.User) {
	m.transition(Session{Status: StatusPendingVerification, User: user})
}

// SetUnauthenticated переводит сессию в Unauthenticated
func (m *Manager) SetUnauthenticated() {
	m.transition(Session{Status: StatusUnauthenticated})
}

// SetError переводит сессию в Error, замещая снимок целиком: User сбрасывается,
// он заполнен только для Authenticated и PendingVerification. Следующий переход
// ставит явное конкретное состояние, ошибка не задерживается.
func (m *Manager) SetError(message string) {
	m.transition(Session{Status: StatusError, Err: message})
}

// transition атомарно заменяет состояние и рассылает его подписчикам
func (m *Manager) transition(next Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = next

	for _, ch := range m.subs {
		select {
		case ch <- next:
		default:
			// Подписчик не успевает - пропускаем, переходы не блокируются
		}
	}
}
