package mapview

import (
	"context"
	"sync"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/cloo-solutions/lunchpick/internal/session"
	"github.com/cloo-solutions/lunchpick/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// Renderer loads an engine in the background and redraws the whole map
// whenever the session view changes. Nothing is drawn before the engine is
// ready. Bursts of changes are coalesced into one redraw of the latest view.
type Renderer struct {
	name    string
	loader  Loader
	session *session.Session
	log     logrus.FieldLogger

	ready    chan struct{}
	dirty    chan struct{}
	stopChan chan struct{}
	doneChan chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once

	mu      sync.RWMutex
	started bool
	view    domain.MapView
	frame   *Frame
	loadErr error
}

// NewRenderer creates a Renderer for sess. name identifies the engine in logs.
func NewRenderer(name string, loader Loader, sess *session.Session, logger logrus.FieldLogger) *Renderer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Renderer{
		name:     name,
		loader:   loader,
		session:  sess,
		log:      logger.WithField("engine", name),
		ready:    make(chan struct{}),
		dirty:    make(chan struct{}, 1),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Name returns the engine name.
func (r *Renderer) Name() string {
	return r.name
}

// Start loads the engine and begins rendering in a new goroutine.
func (r *Renderer) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		r.mu.Lock()
		r.started = true
		r.mu.Unlock()
		go r.run(ctx)
	})
}

// Stop ends the render loop and waits for it to exit.
func (r *Renderer) Stop() {
	r.mu.RLock()
	started := r.started
	r.mu.RUnlock()
	if !started {
		return
	}

	r.stopOnce.Do(func() {
		close(r.stopChan)
	})
	<-r.doneChan
	r.log.Debug("map renderer stopped")
}

// Ready is closed once the engine has loaded.
func (r *Renderer) Ready() <-chan struct{} {
	return r.ready
}

// Err returns the engine load error, if any.
func (r *Renderer) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadErr
}

// Frame returns the most recent rendering.
func (r *Renderer) Frame() (Frame, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.frame == nil {
		return Frame{}, domain.ErrFrameNotReady
	}
	return *r.frame, nil
}

func (r *Renderer) run(ctx context.Context) {
	defer close(r.doneChan)

	engine, err := r.loader.Load(ctx)
	if err != nil {
		r.mu.Lock()
		r.loadErr = err
		r.mu.Unlock()
		r.log.WithError(err).Warn("map engine failed to load")
		telemetry.CaptureError(ctx, err)
		return
	}

	close(r.ready)
	r.log.Info("map engine loaded")
	r.session.SetMapReady(true)

	unsubscribe := r.session.Subscribe(r.onView)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopChan:
			return
		case <-r.dirty:
			r.draw(ctx, engine)
		}
	}
}

func (r *Renderer) onView(view domain.MapView) {
	r.mu.Lock()
	r.view = view
	r.mu.Unlock()

	select {
	case r.dirty <- struct{}{}:
	default:
	}
}

func (r *Renderer) draw(ctx context.Context, engine Engine) {
	_, span := telemetry.StartTransaction(ctx, "Renderer.draw "+r.name, "map.render")
	defer span.End()

	r.mu.RLock()
	view := r.view
	r.mu.RUnlock()

	frame, err := Render(engine, view)
	if err != nil {
		span.SetError(err)
		r.log.WithError(err).Error("failed to render map")
		return
	}
	span.SetResultCount(frame.Markers)

	r.mu.Lock()
	r.frame = &frame
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{
		"markers": frame.Markers,
		"bytes":   len(frame.Body),
	}).Debug("map redrawn")
}
