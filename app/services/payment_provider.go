package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// ErrCheckoutSessionNotFound is returned when the provider has no such session
var ErrCheckoutSessionNotFound = errors.New("checkout session not found")

// Payment statuses reported by the provider
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// CheckoutSession is the provider-neutral view of a hosted checkout
type CheckoutSession struct {
	ID                string
	PaymentStatus     string
	ClientReferenceID string
}

// PaymentProvider looks up hosted checkout sessions
type PaymentProvider interface {
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

type StripePaymentProvider struct {
	client *session.Client
}

func NewStripePaymentProvider(secretKey string) *StripePaymentProvider {
	return &StripePaymentProvider{
		client: &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}
}

func (p *StripePaymentProvider) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.client.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && (stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing) {
			return nil, ErrCheckoutSessionNotFound
		}
		return nil, fmt.Errorf("stripe: retrieve checkout session: %w", err)
	}
	if s == nil {
		return nil, ErrCheckoutSessionNotFound
	}

	return &CheckoutSession{
		ID:                s.ID,
		PaymentStatus:     string(s.PaymentStatus),
		ClientReferenceID: s.ClientReferenceID,
	}, nil
}
