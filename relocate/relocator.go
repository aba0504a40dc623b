// Package relocate moves the directories an install depends on to a new
// location without blocking the caller. The copy runs in a goroutine owned by
// the Relocator; the stored path only changes after the copy succeeded.
package relocate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"launcher-core/db"
	"launcher-core/logger"
)

var (
	// ErrRelocationSkipped is matched by every *SkipError.
	ErrRelocationSkipped = errors.New("relocation skipped")
	// ErrRelocationInProgress rejects a second relocation of the same
	// install and kind, or into a destination another running relocation
	// writes to.
	ErrRelocationInProgress = errors.New("relocation already in progress")
	ErrUnknownKind          = errors.New("unknown relocation kind")
	ErrInvalidDestination   = errors.New("invalid destination")
	ErrClosed               = errors.New("relocator closed")
)

// SkipError explains why nothing was copied.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string { return "relocation skipped: " + e.Reason }

func (e *SkipError) Is(target error) bool { return target == ErrRelocationSkipped }

// Store is the part of the record store the relocator needs.
type Store interface {
	GetInstallByID(ctx context.Context, id string) (*db.Install, error)
	UpdateInstallPath(ctx context.Context, id string, col db.PathColumn, path string) error
}

// Task is a relocation running in the background.
type Task struct {
	InstallID   string
	InstallName string
	Kind        Kind
	Source      string
	Destination string

	root   string // Source with symlinks at its end resolved
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Done is closed when the task has finished, whatever the outcome.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the outcome once Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel stops the copy. The task then fails and cleans up after itself.
func (t *Task) Cancel() { t.cancel() }

type lockKey struct {
	installID string
	kind      Kind
}

// Relocator runs relocations. Close it to cancel running copies and wait
// for them.
type Relocator struct {
	store Store
	fs    afero.Fs
	sink  Sink
	log   *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	active map[lockKey]*Task
	closed bool
}

type Option func(*Relocator)

// WithFs sets the filesystem used for copying. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(r *Relocator) { r.fs = fs }
}

func WithSink(sink Sink) Option {
	return func(r *Relocator) { r.sink = sink }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *Relocator) { r.log = log }
}

func New(store Store, opts ...Option) *Relocator {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Relocator{
		store:  store,
		fs:     afero.NewOsFs(),
		sink:   nopSink{},
		ctx:    ctx,
		cancel: cancel,
		active: make(map[lockKey]*Task),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = logger.OrNop(r.log)
	if r.sink == nil {
		r.sink = nopSink{}
	}
	return r
}

// Relocate starts copying the install's kind directory into destination and
// returns without waiting for the copy.
//
// Nothing is copied unless the current directory exists and has content and
// destination is empty. In that case a *SkipError is returned, a skipped
// event is emitted and destination is recorded as the new path, so an
// install can be pointed at a tree that is already in place.
func (r *Relocator) Relocate(ctx context.Context, installID string, kind Kind, destination string) (*Task, error) {
	col, err := kind.Column()
	if err != nil {
		return nil, err
	}
	if destination == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidDestination)
	}
	destination = filepath.Clean(destination)

	install, err := r.store.GetInstallByID(ctx, installID)
	if err != nil {
		return nil, fmt.Errorf("relocate %s: %w", installID, err)
	}
	source, err := install.Path(col)
	if err != nil {
		return nil, err
	}
	root := source
	if source != "" {
		if root, err = resolveRoot(r.fs, filepath.Clean(source)); err != nil {
			return nil, err
		}
		if within(filepath.Clean(source), destination) || within(root, destination) {
			return nil, fmt.Errorf("%w: %s is inside %s", ErrInvalidDestination, destination, source)
		}
	}

	key := lockKey{installID: installID, kind: kind}
	task, err := r.acquire(key, &Task{
		InstallID:   installID,
		InstallName: install.Name,
		Kind:        kind,
		Source:      source,
		Destination: destination,
		root:        root,
	})
	if err != nil {
		return nil, err
	}

	log := r.log.With(
		zap.String("install_id", installID),
		zap.String("kind", string(kind)),
		zap.String("source", source),
		zap.String("destination", destination),
	)

	if err := r.fs.MkdirAll(destination, 0755); err != nil {
		r.abandon(key)
		return nil, db.IOError("create destination", destination, err)
	}

	reason, err := r.skipReason(root, destination)
	if err != nil {
		r.abandon(key)
		return nil, err
	}
	if reason != "" {
		r.abandon(key)
		log.Infow("Nothing to copy, pointing install at destination", zap.String("reason", reason))
		if err := r.store.UpdateInstallPath(ctx, installID, col, destination); err != nil {
			return nil, fmt.Errorf("record skipped relocation: %w", err)
		}
		skip := &SkipError{Reason: reason}
		r.emit(task, StatusSkipped, skip)
		return nil, skip
	}

	taskCtx, cancel := context.WithCancel(r.ctx)
	task.cancel = cancel

	log.Infow("Starting relocation")
	go r.run(taskCtx, task, col, key, log)
	return task, nil
}

func (r *Relocator) skipReason(source, destination string) (string, error) {
	if source == "" {
		return "install has no current path", nil
	}
	exists, empty, err := isEmptyDir(r.fs, source)
	if err != nil {
		return "", db.IOError("inspect source", source, err)
	}
	if !exists {
		return "source does not exist", nil
	}
	if empty {
		return "source is empty", nil
	}
	_, empty, err = isEmptyDir(r.fs, destination)
	if err != nil {
		return "", db.IOError("inspect destination", destination, err)
	}
	if !empty {
		return "destination is not empty", nil
	}
	return "", nil
}

func (r *Relocator) run(ctx context.Context, t *Task, col db.PathColumn, key lockKey, log *zap.SugaredLogger) {
	defer r.wg.Done()
	defer t.cancel()

	created, err := r.copy(ctx, t)
	if err == nil {
		err = r.store.UpdateInstallPath(ctx, t.InstallID, col, t.Destination)
	}
	if err != nil {
		if cerr := removeAll(r.fs, created); cerr != nil {
			err = multierr.Append(err, cerr)
		}
		log.Errorw("Relocation failed", zap.Error(err))
	} else {
		log.Infow("Relocation completed")
	}

	r.release(key)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	r.emit(t, status, err)
	t.err = err
	close(t.done)
}

func (r *Relocator) copy(ctx context.Context, t *Task) (created []string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("relocation panicked: %v", p)
		}
	}()
	return copyTree(ctx, r.fs, t.root, t.Destination)
}

func (r *Relocator) emit(t *Task, status Status, err error) {
	e := Event{
		Name:        EventMoveComplete,
		InstallID:   t.InstallID,
		InstallName: t.InstallName,
		InstallType: t.Kind,
		Status:      status,
		Source:      t.Source,
		Destination: t.Destination,
	}
	if err != nil {
		e.Error = err.Error()
	}
	r.sink.Emit(e)
}

// acquire registers t under key and counts it in the wait group. It fails
// when key is taken or t's destination overlaps one being written.
func (r *Relocator) acquire(key lockKey, t *Task) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if _, busy := r.active[key]; busy {
		return nil, fmt.Errorf("%w: %s %s", ErrRelocationInProgress, key.installID, key.kind)
	}
	for other, running := range r.active {
		if within(running.Destination, t.Destination) || within(t.Destination, running.Destination) {
			return nil, fmt.Errorf("%w: %s overlaps the destination of %s %s",
				ErrRelocationInProgress, t.Destination, other.installID, other.kind)
		}
	}
	t.done = make(chan struct{})
	t.cancel = func() {}
	r.active[key] = t
	r.wg.Add(1)
	return t, nil
}

func (r *Relocator) release(key lockKey) {
	r.mu.Lock()
	delete(r.active, key)
	r.mu.Unlock()
}

// abandon releases a task that never started copying.
func (r *Relocator) abandon(key lockKey) {
	r.release(key)
	r.wg.Done()
}

// Running reports whether a relocation of the install's kind is in flight.
func (r *Relocator) Running(installID string, kind Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[lockKey{installID: installID, kind: kind}]
	return ok
}

// Close cancels every running relocation and waits for all of them to
// finish. Relocate fails with ErrClosed afterwards.
func (r *Relocator) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

// within reports whether path is root or below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
