package tool

import "sync"

// InvokeObservation captures one dispatched request outcome.
type InvokeObservation struct {
	Tool       string
	Success    bool
	ErrorKind  string
	DurationMS int64
}

// HealthObservation captures one background probe outcome.
type HealthObservation struct {
	Tool           string
	Status         Status
	PreviousStatus Status
	FailureCount   int
	DurationMS     int64
	ErrorMessage   string
}

// Observer receives tool-level observability events.
type Observer interface {
	ObserveInvoke(observation InvokeObservation)
	ObserveHealth(observation HealthObservation)
}

type noopObserver struct{}

func (noopObserver) ObserveInvoke(InvokeObservation) {}
func (noopObserver) ObserveHealth(HealthObservation) {}

var (
	observerMu     sync.RWMutex
	activeObserver Observer = noopObserver{}
)

// SetObserver sets the process-wide tool observability observer.
func SetObserver(observer Observer) {
	observerMu.Lock()
	defer observerMu.Unlock()
	if observer == nil {
		activeObserver = noopObserver{}
		return
	}
	activeObserver = observer
}

func emitInvokeObservation(observation InvokeObservation) {
	observerMu.RLock()
	observer := activeObserver
	observerMu.RUnlock()
	observer.ObserveInvoke(observation)
}

func emitHealthObservation(observation HealthObservation) {
	observerMu.RLock()
	observer := activeObserver
	observerMu.RUnlock()
	observer.ObserveHealth(observation)
}
