//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"pad-lab/domain"
	"pad-lab/domain/event"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one connection's delivery channel for broadcasts.
// Consume must never block on a slow consumer.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry maps live connections to claimed identities.
type IRegistry interface {
	Claim(connID string, desiredName string) (domain.Participant, error)
	Release(connID string) (domain.Participant, bool)
	Participants() []domain.Participant
	FindByIdentity(identity string) (domain.Participant, bool)
}

// IHub fans an event out to every registered sink, skipping the ones that
// cannot take delivery right now.
type IHub interface {
	Register(connID string, sink EventSink)
	Unregister(connID string)
	Broadcast(ctx context.Context, e event.DomainEvent)
}

// IPadService is the facade the transport layer drives.
type IPadService interface {
	Connect(ctx context.Context, connID string, sink EventSink)
	Disconnect(connID string)
	ClaimIdentity(ctx context.Context, connID string, desiredName string, sink EventSink) (domain.Participant, error)
	SubmitEdit(cmd domain.EditCommand)
}
