// Package delivery queues outbound activities in redis and pushes them
// to remote inboxes with signed requests.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-fed/httpsig"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/inkwell-social/inkwell/core"
)

var tracer = otel.Tracer("delivery")

const (
	queueKey     = "delivery:queue"
	pollInterval = 5 * time.Second
	maxFailCount = 5
)

type service struct {
	rdb    *redis.Client
	actor  core.ActorService
	client *http.Client
	config core.Config
}

// NewService creates a new delivery service
func NewService(rdb *redis.Client, actor core.ActorService, config core.Config) core.DeliveryService {
	return &service{
		rdb:   rdb,
		actor: actor,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
		config: config,
	}
}

// Enqueue appends one outbound delivery to the queue. The caller
// returns immediately; transmission happens on the worker.
func (s *service) Enqueue(ctx context.Context, item core.QueuedActivity) error {
	ctx, span := tracer.Start(ctx, "ServiceEnqueue")
	defer span.End()

	raw, err := json.Marshal(item)
	if err != nil {
		span.RecordError(err)
		return err
	}

	err = s.rdb.LPush(ctx, queueKey, raw).Err()
	if err != nil {
		span.RecordError(err)
		return err
	}

	slog.InfoContext(
		ctx, fmt.Sprint("enqueued delivery to ", item.TargetInbox),
		slog.String("module", "delivery"),
	)

	return nil
}

// PendingCount returns the number of queued deliveries.
func (s *service) PendingCount(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "ServicePendingCount")
	defer span.End()

	return s.rdb.LLen(ctx, queueKey).Result()
}

// Boot starts the delivery worker.
func (s *service) Boot() {
	slog.Info("delivery worker start!")

	ticker := time.NewTicker(pollInterval)
	go func() {
		for {
			<-ticker.C
			ctx, span := tracer.Start(context.Background(), "worker.Drain")
			s.drain(ctx)
			span.End()
		}
	}()
}

// drain pops and transmits queued deliveries until the queue is empty.
func (s *service) drain(ctx context.Context) {
	for {
		raw, err := s.rdb.RPop(ctx, queueKey).Result()
		if err != nil {
			if err != redis.Nil {
				slog.ErrorContext(ctx, "failed to pop delivery queue",
					slog.String("error", err.Error()),
					slog.String("module", "delivery"),
				)
			}
			return
		}

		var item core.QueuedActivity
		err = json.Unmarshal([]byte(raw), &item)
		if err != nil {
			slog.ErrorContext(ctx, "dropping malformed queue entry",
				slog.String("error", err.Error()),
				slog.String("module", "delivery"),
			)
			continue
		}

		err = s.deliver(ctx, item)
		if err != nil {
			s.requeue(ctx, item, err)
		}
	}
}

func (s *service) requeue(ctx context.Context, item core.QueuedActivity, cause error) {
	item.FailCount++
	if item.FailCount >= maxFailCount {
		slog.ErrorContext(
			ctx, fmt.Sprintf("giving up delivery to %s after %d attempts", item.TargetInbox, item.FailCount),
			slog.String("error", cause.Error()),
			slog.String("module", "delivery"),
		)
		return
	}

	slog.WarnContext(
		ctx, fmt.Sprintf("delivery to %s failed, requeueing", item.TargetInbox),
		slog.String("error", cause.Error()),
		slog.String("module", "delivery"),
	)

	raw, err := json.Marshal(item)
	if err != nil {
		return
	}
	s.rdb.LPush(ctx, queueKey, raw)
}

// deliver posts one activity to its target inbox, signed with the
// sending actor's key.
func (s *service) deliver(ctx context.Context, item core.QueuedActivity) error {
	ctx, span := tracer.Start(ctx, "ServiceDeliver")
	defer span.End()

	signer, err := s.actor.Get(ctx, item.SignerID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if signer.PrivateKey == nil {
		return fmt.Errorf("signer %s has no private key", item.SignerID)
	}

	priv, err := core.ParsePrivateKey(*signer.PrivateKey)
	if err != nil {
		span.RecordError(err)
		return err
	}

	payload := []byte(item.Payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, item.TargetInbox, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/activity+json")
	req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))

	prefs := []httpsig.Algorithm{httpsig.ED25519}
	headersToSign := []string{httpsig.RequestTarget, "date", "digest"}
	sig, _, err := httpsig.NewSigner(prefs, httpsig.DigestSha256, headersToSign, httpsig.Signature, 0)
	if err != nil {
		return err
	}
	err = sig.SignRequest(priv, signer.ID+"#main-key", req, payload)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("inbox %s answered %s", item.TargetInbox, resp.Status)
	}

	slog.InfoContext(
		ctx, fmt.Sprint("delivered activity to ", item.TargetInbox),
		slog.String("module", "delivery"),
	)

	return nil
}
