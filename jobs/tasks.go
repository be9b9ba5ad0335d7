package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/vinaykumar231/WOFR-Backend/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSendOTP delivers a one-time code by email or SMS.
	TaskSendOTP = "auth:otp:send"
	// TaskAccessCacheRebuild re-resolves every assigned subject into the capability cache.
	TaskAccessCacheRebuild = "access:cache:rebuild"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SendOTPPayload describes one code delivery.
type SendOTPPayload struct {
	Channel   string `json:"channel"`
	Recipient string `json:"recipient"`
	Code      string `json:"code"`
	Purpose   string `json:"purpose"`
}

// NewSendOTPTask constructs an Asynq task.
func NewSendOTPTask(payload SendOTPPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSendOTP, data), nil
}

// OTPDeliveryJob hands codes to the outbound channel. Delivery providers are
// out of scope, so the job records the send in the log with the code masked.
type OTPDeliveryJob struct {
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle processes TaskSendOTP tasks.
func (j *OTPDeliveryJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendOTPPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if strings.TrimSpace(payload.Recipient) == "" || payload.Code == "" {
		return asynq.SkipRetry
	}
	metrics := metricsOrDefault(j.Metrics)
	tracker := metrics.Track(TaskSendOTP)
	if err := ctx.Err(); err != nil {
		return tracker.End(err)
	}
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("otp delivered",
		slog.String("job", TaskSendOTP),
		slog.String("channel", payload.Channel),
		slog.String("purpose", payload.Purpose),
		slog.String("recipient", maskRecipient(payload.Recipient)),
	)
	metrics.OTPSent(payload.Channel, payload.Purpose)
	return tracker.End(nil)
}

// NewAccessCacheRebuildTask constructs the periodic rebuild task.
func NewAccessCacheRebuildTask() *asynq.Task {
	return asynq.NewTask(TaskAccessCacheRebuild, nil)
}

// Warmer resolves and caches capability sets.
type Warmer interface {
	Warm(ctx context.Context) (int, error)
}

// Invalidator abandons every cached capability set.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// AccessCacheRebuildJob bumps the cache version and re-resolves every assigned subject.
type AccessCacheRebuildJob struct {
	Resolver Warmer
	Cache    Invalidator
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// Handle processes TaskAccessCacheRebuild tasks.
func (j *AccessCacheRebuildJob) Handle(ctx context.Context, _ *asynq.Task) (err error) {
	if j == nil || j.Resolver == nil {
		return errors.New("access cache rebuild: resolver not configured")
	}
	metrics := metricsOrDefault(j.Metrics)
	tracker := metrics.Track(TaskAccessCacheRebuild)
	defer func() { err = tracker.End(err) }()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("job", TaskAccessCacheRebuild))

	if j.Cache != nil {
		j.Cache.Invalidate(ctx)
	}
	warmed, err := j.Resolver.Warm(ctx)
	if err != nil {
		logger.Error("rebuild access cache", slog.Int("warmed", warmed), slog.Any("error", err))
		return err
	}
	metrics.SubjectsWarmed(warmed)
	logger.Info("access cache rebuilt", slog.Int("subjects", warmed))
	return nil
}

func metricsOrDefault(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}

func maskRecipient(recipient string) string {
	if len(recipient) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(recipient)-4) + recipient[len(recipient)-4:]
}
