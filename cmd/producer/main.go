// Command producer publishes sample recordings to Kafka for the kafka source.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/mfreport/internal/date"
	"github.com/sanspareilsmyn/mfreport/internal/recording"
)

var (
	brokers  = pflag.StringSlice("brokers", []string{"localhost:9092"}, "kafka brokers")
	topic    = pflag.String("topic", "recordings", "topic to publish to")
	websites = pflag.StringSliceP("projects", "p", []string{"sample-site"}, "website ids used as message keys")
	count    = pflag.IntP("count", "n", 1000, "recordings to publish per website")
	days     = pflag.Int("days", 30, "spread recordings over this many days up to today")
	interval = pflag.Duration("interval", 0, "pause between messages")
)

func main() {
	pflag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()

	writer := &kafka.Writer{
		Addr:     kafka.TCP(*brokers...),
		Topic:    *topic,
		Balancer: &kafka.Hash{},
	}
	defer func() {
		if err := writer.Close(); err != nil {
			sugar.Errorw("Error closing kafka writer", zap.Error(err))
		}
	}()
	sugar.Infow("Starting sample producer", "topic", *topic, "brokers", *brokers, "websites", *websites)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	today := date.Today()

	produced := 0
	for _, websiteID := range *websites {
		for i := 0; i < *count; i++ {
			rec := generateSampleRecording(rng, today, *days)
			value, err := json.Marshal(rec)
			if err != nil {
				sugar.Warnw("Error marshalling recording", zap.Error(err))
				continue
			}

			err = writer.WriteMessages(ctx, kafka.Message{Key: []byte(websiteID), Value: value})
			if err != nil {
				if ctx.Err() != nil {
					sugar.Infow("Context cancelled, exiting message loop", "produced", produced)
					return
				}
				sugar.Errorw("Error writing message", "website_id", websiteID, zap.Error(err))
				continue
			}
			produced++
			sugar.Debugw("Produced recording", "website_id", websiteID, "id", rec.ID, "created", rec.Created)

			if *interval > 0 {
				select {
				case <-time.After(*interval):
				case <-ctx.Done():
					sugar.Infow("Producer loop stopped", "produced", produced)
					return
				}
			}
		}
	}
	sugar.Infow("Producer finished", "produced", produced)
}

var (
	countries = []string{"dk", "de", "uk", "se", "us", ""}
	browsers  = []string{"Chrome", "Firefox", "Safari", "Edge"}
	devices   = []string{"Desktop", "Phone", "Tablet"}
	systems   = []string{"Windows", "macOS", "Android", "iOS", "Linux"}
	referrers = []string{"Direct", "Search", "Social", "Email", "Err"}
	pages     = []string{"/", "/pricing", "/blog", "/signup"}
	tags      = []string{"checkout", "vip", "bounce", "returning"}
)

// generateSampleRecording makes a recording created within the last days days,
// with the occasional empty label the API also returns.
func generateSampleRecording(rng *rand.Rand, today time.Time, days int) recording.Recording {
	pick := func(values []string) *string {
		v := values[rng.Intn(len(values))]
		return &v
	}
	duration := float64(5000 + rng.Intn(600000))
	engagement := duration * rng.Float64()
	pageViews := float64(1 + rng.Intn(12))

	var recTags []string
	for _, t := range tags {
		if rng.Float64() < 0.2 {
			recTags = append(recTags, t)
		}
	}

	created := date.AddDays(today, -rng.Intn(days+1)).Add(time.Duration(rng.Intn(86400)) * time.Second)
	return recording.Recording{
		ID:             uuid.NewString(),
		Created:        created.Format(time.RFC3339),
		Duration:       &duration,
		EngagementTime: &engagement,
		Pages:          &pageViews,
		Country:        pick(countries),
		Browser:        pick(browsers),
		Device:         pick(devices),
		OS:             pick(systems),
		ReferrerType:   pick(referrers),
		EntryPage:      pick(pages),
		Tags:           recTags,
		Variables:      []string{fmt.Sprintf("plan=%s", *pick([]string{"free", "pro"}))},
	}
}
