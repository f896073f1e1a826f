package interfaces

import "context"

// MessagingPort публикует события каталога во внешнюю шину
type MessagingPort interface {
	Publish(ctx context.Context, topic string, message []byte) error

	PublishWithKey(ctx context.Context, topic string, key string, message []byte) error

	Close() error
}
