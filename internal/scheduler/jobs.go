package scheduler

import (
	"context"
	"errors"

	claimservice "claimflow/internal/claim/service"
	"claimflow/internal/message/dispatcher"
	paymentservice "claimflow/internal/payment/service"
)

const (
	JobProcessMessages     = "process-messages"
	JobCreatePaymentCycles = "create-payment-cycles"
	JobCardCancellation    = "card-cancellation"
)

type MessageDispatcher interface {
	ProcessAll(ctx context.Context) (dispatcher.SweepResult, error)
}

type PaymentCycleRollover interface {
	CreateNewPaymentCycles(ctx context.Context) (paymentservice.RolloverResult, error)
}

type CardSweeper interface {
	HandlePendingCancellations(ctx context.Context) (claimservice.SweepResult, error)
	HandleScheduledCancellations(ctx context.Context) (claimservice.SweepResult, error)
}

func ProcessMessagesJob(schedule string, d MessageDispatcher) Job {
	return Job{
		Name:     JobProcessMessages,
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			_, err := d.ProcessAll(ctx)
			return err
		},
	}
}

func CreatePaymentCyclesJob(schedule string, r PaymentCycleRollover) Job {
	return Job{
		Name:     JobCreatePaymentCycles,
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			_, err := r.CreateNewPaymentCycles(ctx)
			return err
		},
	}
}

// CardCancellationJob ages pending cancellations and then acts on the cards
// scheduled for cancellation. A card scheduled in the first step is acted on
// in the same run.
func CardCancellationJob(schedule string, c CardSweeper) Job {
	return Job{
		Name:     JobCardCancellation,
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			_, pendingErr := c.HandlePendingCancellations(ctx)
			if pendingErr != nil && ctx.Err() != nil {
				return pendingErr
			}
			_, scheduledErr := c.HandleScheduledCancellations(ctx)
			return errors.Join(pendingErr, scheduledErr)
		},
	}
}
