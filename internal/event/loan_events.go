package event

import (
	"context"
	"time"
)

type LoanEventPayload struct {
	LoanID         string   `json:"_id"`
	Name           string   `json:"name"`
	Amount         int64    `json:"amount"`
	Type           string   `json:"type"`
	Income         int64    `json:"income"`
	InterestRate   float64  `json:"interestRate"`
	MonthlyPayment *float64 `json:"monthlyPayment,omitempty"`
}

type LoanCreatedEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Payload   LoanEventPayload `json:"payload"`
}

type LoanUpdatedEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Payload   LoanEventPayload `json:"payload"`
}

type LoanDeletedEvent struct {
	Timestamp time.Time `json:"timestamp"`
	LoanID    string    `json:"_id"`
}

func (p *RabbitMQEventPublisher) PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error {
	return p.publish(ctx, routingKeyLoanCreated, event)
}

func (p *RabbitMQEventPublisher) PublishLoanUpdated(ctx context.Context, event LoanUpdatedEvent) error {
	return p.publish(ctx, routingKeyLoanUpdated, event)
}

func (p *RabbitMQEventPublisher) PublishLoanDeleted(ctx context.Context, event LoanDeletedEvent) error {
	return p.publish(ctx, routingKeyLoanDeleted, event)
}

var _ LoanEventPublisher = (*RabbitMQEventPublisher)(nil)
