package scanevents

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/straja-ai/rakshak/internal/detect"
	"github.com/straja-ai/rakshak/internal/safety"
)

func scanRecord() detect.ScanRecord {
	return detect.ScanRecord{
		Timestamp:        time.Date(2024, 6, 1, 17, 30, 0, 0, time.FixedZone("IST", 19800)),
		Kind:             detect.KindURL,
		Result:           detect.ResultPhishing,
		Tier:             safety.High,
		Category:         "Phishing Link",
		Score:            0.72,
		Duration:         1500 * time.Microsecond,
		Input:            "http://192.168.1.1/login?user=priya@example.com",
		FailedEstimators: []string{"url-rf"},
	}
}

func TestBuildEventMetadataOnly(t *testing.T) {
	ev := BuildEvent(BuildParams{Record: scanRecord()})

	_, err := uuid.Parse(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, EventVersion, ev.Version)
	assert.Equal(t, time.UTC, ev.Timestamp.Location())
	assert.Equal(t, 12, ev.Timestamp.Hour())
	assert.True(t, ev.Threat)
	assert.Equal(t, safety.High, ev.RiskLevel)
	assert.Equal(t, 1.5, ev.LatencyMs)
	assert.Equal(t, []string{"url-rf"}, ev.FailedEstimators)
	assert.Empty(t, ev.Preview, "metadata mode carries no input")
}

func TestBuildEventRedactedPreview(t *testing.T) {
	ev := BuildEvent(BuildParams{Record: scanRecord(), PreviewMode: "REDACTED"})

	assert.NotEmpty(t, ev.Preview)
	assert.NotContains(t, ev.Preview, "priya")
	assert.Contains(t, ev.Preview, "192.168.1.1")
}

func TestBuildEventCopiesFailedEstimators(t *testing.T) {
	rec := scanRecord()
	ev := BuildEvent(BuildParams{Record: rec})
	rec.FailedEstimators[0] = "mutated"
	assert.Equal(t, "url-rf", ev.FailedEstimators[0])
}

func TestRedisSinkAppendsToStream(t *testing.T) {
	mr := miniredis.RunT(t)

	sink, err := NewRedisSink(RedisConfig{Addr: mr.Addr(), Stream: "scans-test"})
	require.NoError(t, err)
	assert.Equal(t, "redis_stream:scans-test", sink.Name())

	ev := BuildEvent(BuildParams{Record: scanRecord()})
	require.NoError(t, sink.Deliver(context.Background(), ev))
	require.NoError(t, sink.Close(context.Background()))

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	msgs, err := client.XRange(context.Background(), "scans-test", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, ev.ID, msgs[0].Values["id"])
	assert.Equal(t, "url", msgs[0].Values["type"])
	assert.Equal(t, "phishing", msgs[0].Values["result"])

	var decoded Event
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["event"].(string)), &decoded))
	assert.Equal(t, "Phishing Link", decoded.Category)
}

func TestRedisSinkDefaultsStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	sink := NewRedisSinkWithClient(client, "", 100)
	defer sink.Close(context.Background())

	require.NoError(t, sink.Deliver(context.Background(), BuildEvent(BuildParams{Record: scanRecord()})))
	assert.True(t, mr.Exists(DefaultStream))
}

func TestNewRedisSinkErrors(t *testing.T) {
	_, err := NewRedisSink(RedisConfig{})
	assert.ErrorIs(t, err, ErrEmptyAddress)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisSink(RedisConfig{Addr: addr})
	assert.ErrorContains(t, err, "redis ping failed")
}
