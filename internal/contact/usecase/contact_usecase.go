package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"trialfinder-backend/pkg/mailer"

	"github.com/emersion/go-message/mail"
	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidContact = errors.New("invalid contact request")
	ErrNotConfigured  = errors.New("contact form is not configured")
	ErrSendFailed     = errors.New("failed to send message")
)

const maxMessageLength = 5000

type ContactRequest struct {
	Name    string
	Email   string
	Message string
}

type ContactUsecase interface {
	Submit(ctx context.Context, req ContactRequest) error
}

type contactUsecase struct {
	sender mailer.Sender
	from   string
	to     string
	log    logrus.FieldLogger
}

func NewContactUsecase(sender mailer.Sender, from, to string, log logrus.FieldLogger) ContactUsecase {
	return &contactUsecase{
		sender: sender,
		from:   from,
		to:     to,
		log:    log.WithField("component", "contact"),
	}
}

func (u *contactUsecase) Submit(ctx context.Context, req ContactRequest) error {
	name := strings.TrimSpace(req.Name)
	body := strings.TrimSpace(req.Message)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidContact)
	}
	if body == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidContact)
	}
	if utf8.RuneCountInString(body) > maxMessageLength {
		return fmt.Errorf("%w: message is too long", ErrInvalidContact)
	}
	replyTo, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return fmt.Errorf("%w: email is invalid", ErrInvalidContact)
	}
	replyTo.Name = name

	if u.sender == nil || u.from == "" || u.to == "" {
		return ErrNotConfigured
	}

	msg := mailer.Message{
		From:    &mail.Address{Name: "Trial Finder", Address: u.from},
		To:      []*mail.Address{{Address: u.to}},
		ReplyTo: replyTo,
		Subject: "Contact form: " + name,
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s\n", name, replyTo.Address, body),
	}
	if err := u.sender.Send(ctx, msg); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			return ErrNotConfigured
		}
		u.log.WithError(err).Error("contact message delivery failed")
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	u.log.WithField("reply_to", replyTo.Address).Info("contact message sent")
	return nil
}
