package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"geomark/internal/domain"
	"geomark/internal/metrics"
	"geomark/internal/storage"
)

var (
	// ErrNotStarted is returned by Enqueue before Start or after Shutdown.
	ErrNotStarted = errors.New("backup manager not running")
	// ErrQueueFull is returned by Enqueue when every queue slot is taken.
	ErrQueueFull = errors.New("backup queue is full")
)

// MarkerLister is the slice of the marker service a snapshot needs.
type MarkerLister interface {
	List(ctx context.Context, owner domain.Identity) ([]domain.Marker, error)
}

// Snapshot describes one stored backup of an owner's markers.
type Snapshot struct {
	Key          string
	Size         int64
	LastModified *time.Time
	URL          string
}

// Manager uploads JSON snapshots of an owner's markers in the background.
type Manager interface {
	Start(ctx context.Context) error
	Shutdown()
	Enqueue(ctx context.Context, owner domain.Identity) (string, error)
	List(ctx context.Context, owner domain.Identity) ([]Snapshot, error)
}

type Config struct {
	Bucket        string
	KeyPrefix     string
	MaxConcurrent int
	QueueSize     int
	URLTTL        time.Duration
	Logger        logrus.FieldLogger
	Now           func() time.Time
}

type job struct {
	owner domain.Identity
	key   string
}

type manager struct {
	cfg     Config
	markers MarkerLister
	storage storage.Service

	jobs    chan job
	wg      sync.WaitGroup
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	closed  bool
}

func NewManager(cfg Config, markers MarkerLister, store storage.Service) Manager {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.URLTTL <= 0 {
		cfg.URLTTL = 15 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &manager{
		cfg:     cfg,
		markers: markers,
		storage: store,
		jobs:    make(chan job, cfg.QueueSize),
	}
}

func (m *manager) Start(ctx context.Context) error {
	if m.cfg.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started || m.closed {
		return fmt.Errorf("backup manager already started")
	}
	m.started = true
	m.ctx, m.cancel = context.WithCancel(ctx)

	for i := 0; i < m.cfg.MaxConcurrent; i++ {
		m.wg.Add(1)
		go m.worker(m.ctx)
	}
	m.cfg.Logger.Infof("backup manager started, bucket: %s, workers: %d", m.cfg.Bucket, m.cfg.MaxConcurrent)
	return nil
}

// Shutdown stops accepting snapshots and waits for queued ones to finish.
// Cancelling the context passed to Start aborts them instead.
func (m *manager) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.jobs)
	m.mu.Unlock()

	m.wg.Wait()
	if m.cancel != nil {
		m.cancel()
	}
	m.cfg.Logger.Info("backup manager stopped")
}

// Enqueue never blocks: a full queue fails with ErrQueueFull.
func (m *manager) Enqueue(_ context.Context, owner domain.Identity) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started || m.closed || m.ctx.Err() != nil {
		return "", ErrNotStarted
	}

	key := m.snapshotKey(owner)
	select {
	case m.jobs <- job{owner: owner, key: key}:
		return key, nil
	default:
		metrics.BackupsTotal.WithLabelValues("rejected").Inc()
		return "", ErrQueueFull
	}
}

func (m *manager) worker(ctx context.Context) {
	defer m.wg.Done()
	for j := range m.jobs {
		if ctx.Err() != nil {
			continue
		}
		m.upload(ctx, j.owner, j.key)
	}
}

func (m *manager) upload(ctx context.Context, owner domain.Identity, key string) {
	logger := m.cfg.Logger.WithFields(logrus.Fields{"user_id": owner.ID, "key": key})

	markers, err := m.markers.List(ctx, owner)
	if err != nil {
		metrics.BackupsTotal.WithLabelValues("error").Inc()
		logger.WithError(err).Error("list markers for backup")
		return
	}
	body, err := json.Marshal(markers)
	if err != nil {
		metrics.BackupsTotal.WithLabelValues("error").Inc()
		logger.WithError(err).Error("encode backup")
		return
	}
	if err := m.storage.PutObject(ctx, m.cfg.Bucket, key, body, "application/json"); err != nil {
		metrics.BackupsTotal.WithLabelValues("error").Inc()
		logger.WithError(err).Error("upload backup")
		return
	}

	metrics.BackupsTotal.WithLabelValues("ok").Inc()
	logger.WithField("markers", len(markers)).Info("backup uploaded")
}

func (m *manager) List(ctx context.Context, owner domain.Identity) ([]Snapshot, error) {
	objects, err := m.storage.ListObjects(ctx, m.cfg.Bucket, m.ownerPrefix(owner))
	if err != nil {
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(objects))
	for _, obj := range objects {
		url, err := m.storage.PresignGet(ctx, m.cfg.Bucket, obj.Key, m.cfg.URLTTL)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, Snapshot{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			URL:          url,
		})
	}
	return snapshots, nil
}

// ownerPrefix ends with a slash so user-1 never matches user-10.
func (m *manager) ownerPrefix(owner domain.Identity) string {
	return path.Join(m.cfg.KeyPrefix, fmt.Sprintf("user-%d", owner.ID)) + "/"
}

func (m *manager) snapshotKey(owner domain.Identity) string {
	stamp := m.cfg.Now().UTC().Format("20060102T150405Z")
	return m.ownerPrefix(owner) + stamp + "-" + uuid.NewString() + ".json"
}
