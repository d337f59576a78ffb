// Package worker holds the message handlers run by the background worker.
package worker

import (
	"context"
	"time"

	"github.com/turtacn/urban-dds/internal/application/analysis"
	"github.com/turtacn/urban-dds/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/urban-dds/internal/infrastructure/storage/minio"
)

// Archive outcomes passed to the Recorder.
const (
	OutcomeArchived = "archived"
	OutcomeExisting = "existing"
	OutcomeLocked   = "locked"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)

const defaultLockTTL = 2 * time.Minute

// Archiver stores rendered reports.  minio.ReportArchive implements it.
type Archiver interface {
	Archive(ctx context.Context, ev analysis.ReportEvent) (*minio.UploadResult, error)
	Exists(ctx context.Context, regionCode, documentID string) (bool, error)
}

// Locker is a non-blocking mutex.  *redis.Mutex implements it.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// LockFactory returns the Locker guarding one document.
type LockFactory func(name string, ttl time.Duration) Locker

// Recorder observes archive outcomes.
type Recorder interface {
	ObserveArchive(outcome string, d time.Duration)
}

// ArchiveHandler consumes report-created events and uploads the rendered
// report to object storage.
type ArchiveHandler struct {
	archiver Archiver
	locks    LockFactory
	lockTTL  time.Duration
	recorder Recorder
	logger   logging.Logger
	now      func() time.Time
}

// Option configures an ArchiveHandler.
type Option func(*ArchiveHandler)

// WithLocks serializes work on a document across workers.
func WithLocks(f LockFactory, ttl time.Duration) Option {
	return func(h *ArchiveHandler) {
		h.locks = f
		if ttl > 0 {
			h.lockTTL = ttl
		}
	}
}

// WithRecorder installs a Recorder.
func WithRecorder(r Recorder) Option {
	return func(h *ArchiveHandler) { h.recorder = r }
}

func NewArchiveHandler(archiver Archiver, log logging.Logger, opts ...Option) *ArchiveHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	h := &ArchiveHandler{archiver: archiver, lockTTL: defaultLockTTL, logger: log, now: time.Now}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Handle implements kafka.MessageHandler.  Undecodable records return a
// serialization or validation error, which the consumer dead-letters
// without retrying.  A document already archived or
// locked by another worker is acknowledged without work.
func (h *ArchiveHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	start := h.now()

	ev, err := kafka.DecodeReportEvent(msg)
	if err != nil {
		h.observe(OutcomeInvalid, start)
		h.logger.Warn("Undecodable report event",
			logging.String("topic", msg.Topic),
			logging.Int64("offset", msg.Offset),
			logging.Err(err))
		return err
	}

	log := h.logger.With(
		logging.String("document_id", ev.DocumentID),
		logging.String("region_code", ev.RegionCode))

	if h.locks != nil {
		lock := h.locks("archive:"+ev.DocumentID, h.lockTTL)
		ok, err := lock.TryLock(ctx)
		if err != nil {
			h.observe(OutcomeFailed, start)
			return err
		}
		if !ok {
			h.observe(OutcomeLocked, start)
			log.Debug("Report archive in progress elsewhere")
			return nil
		}
		defer func() {
			if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
				log.Warn("Archive lock release failed", logging.Err(err))
			}
		}()
	}

	exists, err := h.archiver.Exists(ctx, ev.RegionCode, ev.DocumentID)
	if err != nil {
		h.observe(OutcomeFailed, start)
		return err
	}
	if exists {
		h.observe(OutcomeExisting, start)
		log.Debug("Report already archived")
		return nil
	}

	res, err := h.archiver.Archive(ctx, ev)
	if err != nil {
		h.observe(OutcomeFailed, start)
		log.Error("Report archive failed", logging.Err(err))
		return err
	}

	h.observe(OutcomeArchived, start)
	log.Info("Report archived",
		logging.String("object_key", res.ObjectKey),
		logging.Int64("size", res.Size))
	return nil
}

func (h *ArchiveHandler) observe(outcome string, start time.Time) {
	if h.recorder != nil {
		h.recorder.ObserveArchive(outcome, h.now().Sub(start))
	}
}

//Personal.AI order the ending
