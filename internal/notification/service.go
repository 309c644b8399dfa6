package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"trialfinder-backend/pkg/fcm"

	"cloud.google.com/go/pubsub"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const (
	dispatchTimeout = 30 * time.Second
	maxBodyRunes    = 100
)

// OwnerResolver maps a sponsor key to the user owning that pharmacy
type OwnerResolver interface {
	OwnerForSponsor(ctx context.Context, sponsorKey string) (string, error)
}

// DeviceStore lists and prunes a user's push tokens
type DeviceStore interface {
	Tokens(userID string) ([]string, error)
	Prune(tokens []string)
}

// Pusher sends one notification to many devices and returns rejected tokens
type Pusher interface {
	SendToDevices(ctx context.Context, tokens []string, notification fcm.NotificationData) ([]string, error)
}

// Service publishes study events and turns them into push notifications for
// the sponsoring pharmacy. Without a Pub/Sub client events are dispatched
// in-process.
type Service struct {
	pubsubClient *pubsub.Client
	topicName    string
	subName      string

	owners  OwnerResolver
	devices DeviceStore
	pusher  Pusher
	log     logrus.FieldLogger

	// Pub/Sub delivers at least once
	seen *expirable.LRU[string, struct{}]
	wg   sync.WaitGroup
}

// NewService connects to Pub/Sub when projectID is set. devices and pusher may
// be nil, in which case events are consumed but nothing is pushed.
func NewService(ctx context.Context, projectID, topicName, credentialsFile string, owners OwnerResolver, devices DeviceStore, pusher Pusher, log logrus.FieldLogger) (*Service, error) {
	var client *pubsub.Client
	if projectID != "" {
		var opts []option.ClientOption
		if credentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(credentialsFile))
		}

		var err error
		client, err = pubsub.NewClient(ctx, projectID, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create pubsub client: %w", err)
		}
	}
	return newService(client, topicName, owners, devices, pusher, log), nil
}

func newService(client *pubsub.Client, topicName string, owners OwnerResolver, devices DeviceStore, pusher Pusher, log logrus.FieldLogger) *Service {
	// Accept a full resource name (projects/x/topics/y)
	if parts := strings.Split(topicName, "/"); len(parts) > 1 {
		topicName = parts[len(parts)-1]
	}
	if topicName == "" {
		topicName = "study-saved"
	}

	return &Service{
		pubsubClient: client,
		topicName:    topicName,
		subName:      topicName + "-sub",
		owners:       owners,
		devices:      devices,
		pusher:       pusher,
		log:          log.WithField("component", "notification"),
		seen:         expirable.NewLRU[string, struct{}](4096, nil, time.Hour),
	}
}

// Publish hands the event to Pub/Sub, or dispatches it in the background when
// Pub/Sub is not configured.
func (s *Service) Publish(ctx context.Context, event StudySavedEvent) error {
	if event.Type == "" {
		event.Type = EventStudySaved
	}

	if s.pubsubClient == nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			dctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
			defer cancel()
			if err := s.dispatch(dctx, event); err != nil {
				s.log.WithError(err).WithField("trial_id", event.TrialID).Warn("in-process dispatch failed")
			}
		}()
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	result := s.pubsubClient.Topic(s.topicName).Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"type": event.Type},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	s.log.WithFields(logrus.Fields{"message_id": id, "trial_id": event.TrialID}).Debug("event published")
	return nil
}

// Start consumes events until ctx is cancelled. It is a no-op without Pub/Sub.
func (s *Service) Start(ctx context.Context) {
	if s.pubsubClient == nil {
		s.log.Info("pubsub not configured, dispatching events in-process")
		return
	}
	s.log.WithFields(logrus.Fields{"topic": s.topicName, "subscription": s.subName}).Info("starting notification service")

	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		s.log.WithError(err).Error("error checking subscription existence")
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			s.log.WithError(err).Error("error checking topic existence")
			return
		}
		if !topicExists {
			s.log.Error("topic does not exist, cannot create subscription")
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 20 * time.Second,
		})
		if err != nil {
			s.log.WithError(err).Error("failed to create subscription")
			return
		}
		s.log.WithField("subscription", s.subName).Info("created subscription")
	}

	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if err := s.handleMessage(ctx, msg); err != nil {
			s.log.WithError(err).WithField("message_id", msg.ID).Warn("message handling failed, will be redelivered")
			msg.Nack()
			return
		}
		msg.Ack()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.WithError(err).Error("error receiving messages")
	}
}

// handleMessage returns an error only for failures worth redelivering.
func (s *Service) handleMessage(ctx context.Context, msg *pubsub.Message) error {
	var event StudySavedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		s.log.WithError(err).Warn("dropping malformed event")
		return nil
	}
	if event.Type != EventStudySaved {
		return nil
	}
	return s.dispatch(ctx, event)
}

func (s *Service) dispatch(ctx context.Context, event StudySavedEvent) error {
	key := event.SponsorKey + "|" + event.TrialID + "|" + event.SavedAt.UTC().Format(time.RFC3339Nano)
	if s.seen.Contains(key) {
		s.log.WithField("trial_id", event.TrialID).Debug("skipping duplicate event")
		return nil
	}

	owner, err := s.owners.OwnerForSponsor(ctx, event.SponsorKey)
	if err != nil {
		return fmt.Errorf("failed to resolve sponsor owner: %w", err)
	}
	if owner == "" {
		s.seen.Add(key, struct{}{})
		return nil
	}

	entry := s.log.WithFields(logrus.Fields{"owner": owner, "trial_id": event.TrialID})
	if s.devices == nil || s.pusher == nil {
		entry.Debug("push disabled")
		s.seen.Add(key, struct{}{})
		return nil
	}

	tokens, err := s.devices.Tokens(owner)
	if err != nil {
		return fmt.Errorf("failed to load device tokens: %w", err)
	}
	if len(tokens) == 0 {
		entry.Debug("no device tokens, skipping push")
		s.seen.Add(key, struct{}{})
		return nil
	}

	failed, err := s.pusher.SendToDevices(ctx, tokens, fcm.NotificationData{
		Title: "A matching patient saved your study",
		Body:  truncateRunes(event.Title, maxBodyRunes),
		Data: map[string]string{
			"type":    EventStudySaved,
			"trialId": event.TrialID,
		},
		ClickAction: "/pharmacy?trial=" + event.TrialID,
	})
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	s.seen.Add(key, struct{}{})

	entry.WithField("devices", len(tokens)-len(failed)).Info("push sent")
	if len(failed) > 0 {
		s.devices.Prune(failed)
	}
	return nil
}

// Close waits for in-process dispatches and releases the Pub/Sub client.
func (s *Service) Close() error {
	s.wg.Wait()
	if s.pubsubClient != nil {
		return s.pubsubClient.Close()
	}
	return nil
}

// truncateRunes shortens s to at most n runes, ending with "..." when cut.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
