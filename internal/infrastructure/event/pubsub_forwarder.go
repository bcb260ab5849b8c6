package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/rst/farmcontrol/internal/domain/shared"
	"github.com/rst/farmcontrol/internal/infrastructure/config"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// PubSubForwarder publishes every domain event to a Pub/Sub topic as a JSON Envelope
// with event_type and tenant_id attributes.
type PubSubForwarder struct {
	client  *pubsub.Client
	topic   *pubsub.Topic
	timeout time.Duration
	logger  *zap.Logger
}

// NewPubSubForwarder connects to the configured project. The topic is created when missing.
func NewPubSubForwarder(ctx context.Context, cfg config.EventsConfig, logger *zap.Logger, extra ...option.ClientOption) (*PubSubForwarder, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}
	opts = append(opts, extra...)

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	topic := client.Topic(cfg.TopicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("check topic %q: %w", cfg.TopicID, err)
	}
	if !exists {
		if topic, err = client.CreateTopic(ctx, cfg.TopicID); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("create topic %q: %w", cfg.TopicID, err)
		}
	}

	logger.Info("Pub/Sub event forwarding enabled",
		zap.String("project_id", cfg.ProjectID),
		zap.String("topic", cfg.TopicID),
	)
	return &PubSubForwarder{
		client:  client,
		topic:   topic,
		timeout: 10 * time.Second,
		logger:  logger.Named("pubsub"),
	}, nil
}

// EventTypes subscribes to every event
func (f *PubSubForwarder) EventTypes() []string { return nil }

// Handle publishes evt and waits for the server-assigned message id
func (f *PubSubForwarder) Handle(ctx context.Context, evt shared.DomainEvent) error {
	env, err := NewEnvelope(evt)
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()

	result := f.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": env.Type,
			"tenant_id":  env.TenantID.String(),
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish %s: %w", env.Type, err)
	}
	f.logger.Debug("Event forwarded", zap.String("event_type", env.Type), zap.String("message_id", id))
	return nil
}

// Close flushes pending messages and closes the client
func (f *PubSubForwarder) Close() error {
	f.topic.Stop()
	return f.client.Close()
}
