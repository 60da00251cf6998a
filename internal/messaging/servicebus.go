package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"

	"example.com/backstage/services/cylinder/config"
)

// Publisher publishes status-transition events for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, body interface{}) error
	Close() error
}

type serviceBusPublisher struct {
	client *azservicebus.Client
	sender *azservicebus.Sender
}

// noopPublisher is used when no connection string is configured.
type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, body interface{}) error { return nil }
func (noopPublisher) Close() error                                        { return nil }

// NewPublisher creates an Azure Service Bus publisher. Without a connection
// string it returns a no-op publisher so event publication stays optional.
func NewPublisher(cfg config.AzureConfig) (Publisher, error) {
	if cfg.QueueConnStr == "" {
		return noopPublisher{}, nil
	}

	client, err := azservicebus.NewClientFromConnectionString(cfg.QueueConnStr, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Service Bus client")
	}

	sender, err := client.NewSender(cfg.QueueName, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Service Bus sender")
	}

	return &serviceBusPublisher{
		client: client,
		sender: sender,
	}, nil
}

func (p *serviceBusPublisher) Publish(ctx context.Context, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message body")
	}

	msg := &azservicebus.Message{
		Body: data,
		ApplicationProperties: map[string]interface{}{
			"source": "cylinder-service",
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	}

	return p.sender.SendMessage(ctx, msg, nil)
}

func (p *serviceBusPublisher) Close() error {
	if p.sender != nil {
		if err := p.sender.Close(context.Background()); err != nil {
			return err
		}
	}
	if p.client != nil {
		return p.client.Close(context.Background())
	}
	return nil
}
