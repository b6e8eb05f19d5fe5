package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Ping checks that at least one broker is reachable. Services run it through
// the retry supervisor at startup so a process never consumes or publishes
// half-initialized.
func Ping(ctx context.Context, broker string) error {
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := kafka.DialContext(dialCtx, "tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Brokers()
	return err
}
