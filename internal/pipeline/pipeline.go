// Package pipeline runs one digest: fetch each configured feed, drop
// promotional entries, generate a digest record per feed, render, and deliver
// by email and chat.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/odysseus0/aidigest/internal/config"
	"github.com/odysseus0/aidigest/internal/format"
	"github.com/odysseus0/aidigest/internal/metrics"
	"github.com/odysseus0/aidigest/internal/model"
)

// ErrNoContent means every configured feed failed to fetch or to generate.
var ErrNoContent = errors.New("no feed produced content")

const (
	ChannelEmail = "email"
	ChannelChat  = "chat"
)

const (
	outcomeOK              = "ok"
	outcomeEmpty           = "empty"
	outcomeFetchError      = "fetch_error"
	outcomeGenerationError = "generation_error"
)

type FeedReader interface {
	Read(ctx context.Context, url string, windowDays, limit int) ([]model.Entry, error)
}

type Classifier interface {
	IsPromotional(text string) bool
}

type Digester interface {
	Digest(ctx context.Context, entries []model.Entry) model.DigestRecord
}

type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

type ChatSender interface {
	Send(ctx context.Context, messages []string) (int, error)
	Announce(ctx context.Context) error
}

// Deps are the collaborators of a Runner. Mailer and Chat may be nil when the
// corresponding channel is disabled or the run is dry.
type Deps struct {
	Reader     FeedReader
	Classifier Classifier
	Digester   Digester
	Mailer     Mailer
	Chat       ChatSender
	Metrics    *metrics.Run
	Logger     *slog.Logger
	RunID      string
}

type RunOptions struct {
	DryRun  bool
	NoEmail bool
	NoChat  bool
}

type Runner struct {
	cfg        config.Config
	reader     FeedReader
	classifier Classifier
	digester   Digester
	mailer     Mailer
	chat       ChatSender
	metrics    *metrics.Run
	logger     *slog.Logger
	runID      string
	now        func() time.Time
	retryDelay func(d time.Duration) backoff.BackOff
}

func New(cfg config.Config, deps Deps) *Runner {
	runID := deps.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.NewRun()
	}
	return &Runner{
		cfg:        cfg,
		reader:     deps.Reader,
		classifier: deps.Classifier,
		digester:   deps.Digester,
		mailer:     deps.Mailer,
		chat:       deps.Chat,
		metrics:    m,
		logger:     logger.With("run_id", runID),
		runID:      runID,
		now:        time.Now,
		retryDelay: newRetryBackOff,
	}
}

func (r *Runner) RunID() string {
	return r.runID
}

// Run processes every source in declaration order and delivers the result.
// Collaborator failures are recorded in the report; the returned error is
// ErrNoContent when no feed succeeded, or the context error on cancellation.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (model.RunReport, error) {
	report := model.RunReport{
		RunID:     r.runID,
		StartedAt: r.now().UTC(),
		Feeds:     make([]model.FeedResult, 0, len(r.cfg.Sources)),
	}
	emailOn := !opts.DryRun && !opts.NoEmail && r.mailer != nil
	chatOn := !opts.DryRun && !opts.NoChat && r.chat != nil

	r.logger.Info("digest run starting", "sources", len(r.cfg.Sources), "dry_run", opts.DryRun)

	if chatOn && r.cfg.AnnounceStart {
		if err := r.chat.Announce(ctx); err != nil {
			r.logger.Warn("start announcement failed", "error", err)
			report.Warnings = append(report.Warnings, "start announcement: "+err.Error())
		}
	}

	for _, src := range r.cfg.Sources {
		if err := ctx.Err(); err != nil {
			report.EndedAt = r.now().UTC()
			return report, err
		}
		result, digest, ok := r.processFeed(ctx, src)
		report.Feeds = append(report.Feeds, result)
		if ok {
			report.Digests = append(report.Digests, digest)
		}
	}

	date := r.now()
	report.Deliveries = append(report.Deliveries,
		r.deliverEmail(ctx, emailOn, date, report.Digests),
		r.deliverChat(ctx, chatOn, report.Digests),
	)

	report.EndedAt = r.now().UTC()
	succeeded := report.Succeeded()
	r.metrics.Finish(report.StartedAt, report.EndedAt, succeeded)
	if r.cfg.PushgatewayURL != "" && !opts.DryRun {
		host, _ := os.Hostname()
		if err := r.metrics.Push(ctx, r.cfg.PushgatewayURL, r.cfg.MetricsJob, host); err != nil {
			r.logger.Warn("metrics push failed", "error", err)
			report.Warnings = append(report.Warnings, err.Error())
		}
	}

	r.logger.Info("digest run finished",
		"feeds", len(report.Feeds),
		"digests", len(report.Digests),
		"duration", report.EndedAt.Sub(report.StartedAt).Round(time.Millisecond),
	)
	if !succeeded && len(r.cfg.Sources) > 0 {
		return report, ErrNoContent
	}
	return report, nil
}

// processFeed returns ok=false when the feed contributes nothing to the
// digest: it could not be fetched or had no usable entries.
func (r *Runner) processFeed(ctx context.Context, src model.FeedSource) (model.FeedResult, model.FeedDigest, bool) {
	log := r.logger.With("feed", src.Name)
	result := model.FeedResult{Name: src.Name, URL: src.URL}

	entries, attempts, err := r.fetchWithRetry(ctx, src)
	result.Attempts = attempts
	if err != nil {
		log.Error("feed skipped", "attempts", attempts, "error", err)
		result.Error = "fetch: " + err.Error()
		r.metrics.RecordFeed(outcomeFetchError, attempts)
		return result, model.FeedDigest{}, false
	}

	kept, promotional := r.filter(entries)
	result.Fetched = len(entries)
	result.Promotional = promotional
	result.Kept = len(kept)
	r.metrics.RecordEntries(result.Fetched, result.Promotional, result.Kept)
	log.Info("feed fetched", "attempts", attempts, "recent", result.Fetched, "promotional", promotional, "kept", result.Kept)

	if len(kept) == 0 {
		r.metrics.RecordFeed(outcomeEmpty, attempts)
		return result, model.FeedDigest{}, false
	}

	record := r.digester.Digest(ctx, kept)
	if record.Err != "" {
		log.Error("digest generation failed", "error", record.Err)
		result.Error = "generate: " + record.Err
		r.metrics.RecordFeed(outcomeGenerationError, attempts)
	} else {
		r.metrics.RecordFeed(outcomeOK, attempts)
	}
	return result, model.FeedDigest{Source: src, Record: record}, true
}

// fetchWithRetry makes up to FetchAttempts calls with a fixed delay between
// them.
func (r *Runner) fetchWithRetry(ctx context.Context, src model.FeedSource) ([]model.Entry, int, error) {
	attempts := max(r.cfg.FetchAttempts, 1)
	attempt := 0
	entries, err := backoff.Retry(ctx, func() ([]model.Entry, error) {
		attempt++
		entries, err := r.reader.Read(ctx, src.URL, r.cfg.WindowDays, 0)
		if err != nil {
			r.logger.Warn("feed fetch failed", "feed", src.Name, "attempt", attempt, "of", attempts, "error", err)
		}
		return entries, err
	},
		backoff.WithBackOff(r.retryDelay(r.cfg.FetchRetryDelay)),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, attempt, ctxErr
		}
		return nil, attempt, fmt.Errorf("after %d attempts: %w", attempt, err)
	}
	return entries, attempt, nil
}

// filter drops promotional entries and then applies the MaxEntries cap.
func (r *Runner) filter(entries []model.Entry) ([]model.Entry, int) {
	kept := make([]model.Entry, 0, len(entries))
	promotional := 0
	for _, e := range entries {
		if r.cfg.FilterPromotional && r.classifier != nil && r.classifier.IsPromotional(e.Title+"\n"+e.Summary) {
			promotional++
			continue
		}
		kept = append(kept, e)
	}
	if r.cfg.MaxEntries > 0 && len(kept) > r.cfg.MaxEntries {
		kept = kept[:r.cfg.MaxEntries]
	}
	return kept, promotional
}

func (r *Runner) deliverEmail(ctx context.Context, enabled bool, date time.Time, digests []model.FeedDigest) model.DeliveryResult {
	res := model.DeliveryResult{Channel: ChannelEmail}
	if !enabled {
		res.Skipped, res.Status = true, "skipped"
		return res
	}
	if err := r.mailer.Send(ctx, format.EmailSubject(date, digests), format.EmailBody(digests)); err != nil {
		res.Status = "failed"
		res.Error = "Error sending email: " + err.Error()
		r.logger.Error("email delivery failed", "error", err)
		r.metrics.RecordDelivery(ChannelEmail, res.Status, 0)
		return res
	}
	res.Sent, res.Status = 1, "sent"
	r.logger.Info("email sent")
	r.metrics.RecordDelivery(ChannelEmail, res.Status, 1)
	return res
}

func (r *Runner) deliverChat(ctx context.Context, enabled bool, digests []model.FeedDigest) model.DeliveryResult {
	res := model.DeliveryResult{Channel: ChannelChat}
	if !enabled {
		res.Skipped, res.Status = true, "skipped"
		return res
	}
	messages := format.ChatMessages(digests, r.cfg.ChatLimit)
	sent, err := r.chat.Send(ctx, messages)
	res.Sent = sent
	if err != nil {
		res.Status = "failed"
		res.Error = "Error sending chat message: " + err.Error()
		r.logger.Error("chat delivery failed", "sent", sent, "total", len(messages), "error", err)
		r.metrics.RecordDelivery(ChannelChat, res.Status, sent)
		return res
	}
	res.Status = "sent"
	r.logger.Info("chat messages sent", "count", sent)
	r.metrics.RecordDelivery(ChannelChat, res.Status, sent)
	return res
}

func newRetryBackOff(d time.Duration) backoff.BackOff {
	return backoff.NewConstantBackOff(d)
}
