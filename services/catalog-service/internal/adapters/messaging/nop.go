package messaging

import (
	"context"

	"github.com/athebyme/autoparts-catalog/pkg/interfaces"
)

// NopMessaging используется, когда Kafka выключена
type NopMessaging struct{}

var _ interfaces.MessagingPort = NopMessaging{}

func (NopMessaging) Publish(context.Context, string, []byte) error { return nil }

func (NopMessaging) PublishWithKey(context.Context, string, string, []byte) error { return nil }

func (NopMessaging) Close() error { return nil }
