package app

import (
	"go.uber.org/zap"

	"github.com/ayusman/pinchball/internal/hand"
	"github.com/ayusman/pinchball/internal/store"
	"github.com/ayusman/pinchball/internal/tracking"
)

// recorder buffers pinch transitions and writes them to the session log.
type recorder struct {
	store   *store.Store
	session *store.Session
	pending []store.PinchEvent
	log     *zap.Logger
}

func newRecorder(st *store.Store, log *zap.Logger) *recorder {
	return &recorder{store: st, log: log}
}

// start opens a new session. A nil store disables recording.
func (r *recorder) start(width, height int) {
	if r.store == nil {
		return
	}

	sess := &store.Session{Width: width, Height: height}
	if err := r.store.Sessions().Create(sess); err != nil {
		r.log.Warn("failed to create session", zap.Error(err))
		return
	}
	r.session = sess
	r.log.Info("session started", zap.String("session", sess.ID))
}

func (r *recorder) id() string {
	if r.session == nil {
		return ""
	}
	return r.session.ID
}

// observe queues an event for every hand whose pinch state flipped.
func (r *recorder) observe(tick int64, out tracking.FrameOutput) {
	if r.session == nil {
		return
	}

	for _, h := range out.Hands {
		if !h.Changed {
			continue
		}
		palm := h.Landmarks[hand.MiddleMCP]
		r.pending = append(r.pending, store.PinchEvent{
			SessionID: r.session.ID,
			Hand:      h.Label.String(),
			Pinched:   h.Clicked,
			Tick:      tick,
			X:         palm.X,
			Y:         palm.Y,
		})
	}
}

func (r *recorder) flush() {
	if r.session == nil || len(r.pending) == 0 {
		return
	}

	if err := r.store.Sessions().AddEvents(r.pending); err != nil {
		r.log.Warn("failed to record pinch events", zap.Error(err), zap.Int("events", len(r.pending)))
	}
	r.pending = r.pending[:0]
}

// finish flushes pending events and stamps the final tick count.
func (r *recorder) finish(ticks int64) {
	if r.session == nil {
		return
	}

	r.flush()
	if err := r.store.Sessions().Finish(r.session.ID, ticks); err != nil {
		r.log.Warn("failed to finish session", zap.Error(err))
	}
	r.log.Info("session finished", zap.String("session", r.session.ID), zap.Int64("ticks", ticks))
	r.session = nil
}
