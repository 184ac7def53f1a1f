package eventstore

import "context"

// Observer is notified of every message stored through an
// ObservedRepository.
type Observer interface {
	WillObserve(message EventMessage) bool
	Observe(ctx context.Context, message EventMessage) error
	OnObserveFailed(error)
}

// ObservedRepository wraps an EventStreamRepository and notifies observers
// after each successful Store. Observer failures are reported to the
// observer itself and never fail the store.
type ObservedRepository struct {
	EventStreamRepository
	observers []Observer
}

// Store stores the message then notifies the interested observers.
func (r *ObservedRepository) Store(ctx context.Context, message EventMessage) error {
	if err := r.EventStreamRepository.Store(ctx, message); err != nil {
		return err
	}

	for _, observer := range r.observers {
		if observer.WillObserve(message) {
			if err := observer.Observe(ctx, message); err != nil {
				observer.OnObserveFailed(err)
			}
		}
	}

	return nil
}

// NewObservedRepository is a factory function that creates a new
// ObservedRepository.
func NewObservedRepository(repo EventStreamRepository, observers ...Observer) *ObservedRepository {
	return &ObservedRepository{repo, observers}
}
