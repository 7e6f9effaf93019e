package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	refreshJob       *RefreshJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	RefreshJob       *RefreshJob
	Logger           zerolog.Logger
}

// RefreshMessage represents a match refresh job message.
type RefreshMessage struct {
	JobType   string `json:"job_type"`
	WarmCache bool   `json:"warm_cache,omitempty"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Refresh runs are long; keep the lease alive but don't pile up work.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 1
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		refreshJob:       cfg.RefreshJob,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	var refreshMsg RefreshMessage
	if err := json.Unmarshal(msg.Data, &refreshMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	var err error
	switch refreshMsg.JobType {
	case "match_refresh":
		err = h.handleMatchRefresh(ctx, refreshMsg)
	case "cache_warm":
		err = h.refreshJob.WarmDistanceCache(ctx)
	case "health_check":
		err = h.refreshJob.Ping(ctx)
	default:
		logger.Warn().Str("job_type", refreshMsg.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	if err != nil {
		logger.Error().Err(err).Msg("job failed")
		msg.Nack()
		return
	}

	duration := time.Since(startTime)
	logger.Info().
		Str("job_type", refreshMsg.JobType).
		Dur("duration", duration).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handleMatchRefresh(ctx context.Context, msg RefreshMessage) error {
	h.logger.Info().
		Bool("warm_cache", msg.WarmCache).
		Msg("starting match refresh")

	result := h.refreshJob.Run(ctx)

	if msg.WarmCache {
		if err := h.refreshJob.WarmDistanceCache(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("cache warming failed")
		}
	}

	h.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("total_listings", result.TotalListings).
		Msg("match refresh completed")

	// Consider it successful if more than half succeeded.
	if result.Failed > result.Successful {
		return fmt.Errorf("too many refresh failures: %d/%d", result.Failed, result.TotalListings)
	}

	return nil
}

// TopicPublisher publishes match alerts to a Pub/Sub topic. The downstream
// notification service fans them out to push and email.
type TopicPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicName string
	logger    zerolog.Logger
}

// TopicPublisherConfig holds configuration for the alert publisher.
type TopicPublisherConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// NewTopicPublisher creates a Pub/Sub publisher for match alerts.
func NewTopicPublisher(ctx context.Context, cfg TopicPublisherConfig) (*TopicPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &TopicPublisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		topicName: cfg.TopicName,
		logger:    cfg.Logger,
	}, nil
}

// PublishMatchAlert publishes a single alert and waits for the server ack.
func (p *TopicPublisher) PublishMatchAlert(ctx context.Context, alert MatchAlert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshaling alert: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": "match_alert",
			"seller_id":  alert.SellerID,
		},
	})

	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing alert: %w", err)
	}

	p.logger.Debug().
		Str("message_id", id).
		Str("listing_id", alert.ListingID).
		Int("top_score", alert.TopScore).
		Msg("match alert published")

	return nil
}

// Close stops the publisher and closes the client.
func (p *TopicPublisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}

var _ AlertPublisher = (*TopicPublisher)(nil)
