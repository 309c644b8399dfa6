package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

var (
	ErrNotConfigured  = errors.New("checkout is not configured")
	ErrCheckoutFailed = errors.New("failed to create checkout session")
)

// SessionCreator is the subset of the Stripe checkout session client used here
type SessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type Config struct {
	SecretKey  string
	PriceID    string
	SuccessURL string
	CancelURL  string
}

type Session struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

type CheckoutUsecase interface {
	// CreateSession starts a pharmacy subscription checkout for the user
	CreateSession(ctx context.Context, userID, email string) (*Session, error)
}

type checkoutUsecase struct {
	sessions SessionCreator
	cfg      Config
	log      logrus.FieldLogger
}

// NewCheckoutUsecase builds a Stripe-backed usecase. Without a secret key or
// price every call returns ErrNotConfigured.
func NewCheckoutUsecase(cfg Config, log logrus.FieldLogger) CheckoutUsecase {
	var sessions SessionCreator
	if cfg.SecretKey != "" && cfg.PriceID != "" {
		sessions = client.New(cfg.SecretKey, nil).CheckoutSessions
	}
	return NewCheckoutUsecaseWithCreator(sessions, cfg, log)
}

func NewCheckoutUsecaseWithCreator(sessions SessionCreator, cfg Config, log logrus.FieldLogger) CheckoutUsecase {
	return &checkoutUsecase{
		sessions: sessions,
		cfg:      cfg,
		log:      log.WithField("component", "checkout"),
	}
}

func (u *checkoutUsecase) CreateSession(ctx context.Context, userID, email string) (*Session, error) {
	if u.sessions == nil {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(u.cfg.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(u.cfg.SuccessURL),
		CancelURL:         stripe.String(u.cfg.CancelURL),
		ClientReferenceID: stripe.String(userID),
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.AddMetadata("user_id", userID)
	params.Context = ctx

	s, err := u.sessions.New(params)
	if err != nil {
		u.log.WithError(err).WithField("user_id", userID).Error("stripe checkout session failed")
		return nil, fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}
