package service

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// ErrPaymentDeclined indicates the simulated gateway declined the charge.
var ErrPaymentDeclined = errors.New("payment declined")

// PaymentService simulates a payment gateway: a fixed processing delay
// followed by a random accept/decline draw. It records no state, so a
// declined payment can simply be resubmitted.
type PaymentService struct {
	delay       time.Duration
	successRate float64
	randFloat   func() float64
}

// NewPaymentService creates a simulator with the given delay and success
// probability in [0,1].
func NewPaymentService(delay time.Duration, successRate float64) *PaymentService {
	return &PaymentService{
		delay:       delay,
		successRate: successRate,
		randFloat:   rand.Float64,
	}
}

// ProcessPayment waits out the processing delay, honoring context
// cancellation, then succeeds with the configured probability.
func (s *PaymentService) ProcessPayment(ctx context.Context) error {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if s.randFloat() < s.successRate {
		return nil
	}
	return ErrPaymentDeclined
}
