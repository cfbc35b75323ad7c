package service

import (
	"errors"
	"fmt"

	"procurement/internal/apperror"
	"procurement/internal/metrics"

	"gorm.io/gorm"
)

// Workflow events published to realtime subscribers
const (
	EventRequestCreated         = "request.created"
	EventRequestApproved        = "request.approved"
	EventRequestRejected        = "request.rejected"
	EventPurchaseOrderCreated   = "purchase_order.created"
	EventPurchaseOrderDelivered = "purchase_order.delivered"
)

// Notifier receives workflow events after the change has been committed
type Notifier interface {
	Publish(event string, payload any)
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, any) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

func publish(n Notifier, event string, payload any) {
	metrics.WorkflowEvent(event)
	n.Publish(event, payload)
}

// lookupError turns a missing record into NotFound and wraps anything else
func lookupError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(entity + " not found")
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	return fmt.Errorf("failed to load %s: %w", entity, err)
}
