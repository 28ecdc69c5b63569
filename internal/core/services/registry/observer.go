package registry

import (
	"sync"

	"github.com/lcalzada-xor/nettrust/internal/core/domain"
)

// ProfileObserver defines the interface for components interested in trust transitions.
type ProfileObserver interface {
	OnBaselineLearned(profile domain.DeviceProfile)
	OnAttackConfirmed(profile domain.DeviceProfile)
}

// RegistrySubject manages observers and notifies them of events.
// Notifications are synchronous; observers must be fast.
type RegistrySubject struct {
	observers []ProfileObserver
	mu        sync.RWMutex
}

// NewRegistrySubject creates a new subject.
func NewRegistrySubject() *RegistrySubject {
	return &RegistrySubject{
		observers: make([]ProfileObserver, 0),
	}
}

// AddObserver registers a new observer.
func (s *RegistrySubject) AddObserver(observer ProfileObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

// NotifyBaseline notifies all observers that a profile was learned as baseline.
func (s *RegistrySubject) NotifyBaseline(profile domain.DeviceProfile) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, obs := range s.observers {
		obs.OnBaselineLearned(profile)
	}
}

// NotifyConfirmed notifies all observers that attack evidence was confirmed.
func (s *RegistrySubject) NotifyConfirmed(profile domain.DeviceProfile) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, obs := range s.observers {
		obs.OnAttackConfirmed(profile)
	}
}
