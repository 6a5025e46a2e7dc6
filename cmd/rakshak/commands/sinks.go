package commands

import (
	"fmt"

	"github.com/straja-ai/rakshak/internal/config"
	"github.com/straja-ai/rakshak/internal/scanevents"
)

// buildSinks opens every configured scan event sink. On error the sinks
// opened so far are returned for the caller to close.
func buildSinks(cfg config.EventsConfig) ([]scanevents.Sink, error) {
	sinks := make([]scanevents.Sink, 0, len(cfg.Sinks))
	for i, sc := range cfg.Sinks {
		var (
			sink scanevents.Sink
			err  error
		)
		switch sc.Type {
		case config.SinkFileJSONL:
			sink, err = scanevents.NewFileSink(sc.Path)
		case config.SinkWebhook:
			sink, err = scanevents.NewWebhookSink(sc.URL, sc.Headers, sc.Timeout)
		case config.SinkRedisStream:
			sink, err = scanevents.NewRedisSink(scanevents.RedisConfig{
				Addr:     sc.Addr,
				Password: sc.RedisPassword(),
				DB:       sc.DB,
				Stream:   sc.Stream,
				MaxLen:   sc.MaxLen,
			})
		default:
			err = fmt.Errorf("unknown type %q", sc.Type)
		}
		if err != nil {
			return sinks, fmt.Errorf("events.sinks[%d]: %w", i, err)
		}
		sinks = append(sinks, sink)
	}
	return sinks, nil
}
