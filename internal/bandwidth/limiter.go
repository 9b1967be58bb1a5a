// Package bandwidth throttles egress traffic, such as media streams.
package bandwidth

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// maxChunk bounds a single throttled write.
const maxChunk = 32 * 1024

// Limiter is a token bucket shared by every stream it throttles.
// A limit of 0 or less means unlimited.
type Limiter struct {
	lim atomic.Pointer[rate.Limiter]
}

// NewLimiter creates a limiter allowing bytesPerSecond.
func NewLimiter(bytesPerSecond int64) *Limiter {
	l := &Limiter{}
	l.Update(bytesPerSecond)
	return l
}

// Update changes the limit. 0 means unlimited. Streams pick the new limit up
// on their next chunk.
func (l *Limiter) Update(bytesPerSecond int64) {
	if bytesPerSecond <= 0 {
		l.lim.Store(rate.NewLimiter(rate.Inf, maxChunk))
		return
	}
	l.lim.Store(rate.NewLimiter(rate.Limit(bytesPerSecond), int(min(bytesPerSecond, maxChunk))))
}

// Unlimited reports whether the limiter lets everything through.
func (l *Limiter) Unlimited() bool {
	return l.lim.Load().Limit() == rate.Inf
}

// Writer returns w throttled by l. Writes block until the bytes fit the
// budget or ctx is done.
func (l *Limiter) Writer(ctx context.Context, w io.Writer) io.Writer {
	return &writer{ctx: ctx, w: w, l: l}
}

// ResponseWriter is Writer for an http.ResponseWriter; the request context
// bounds the waits.
func (l *Limiter) ResponseWriter(r *http.Request, w http.ResponseWriter) http.ResponseWriter {
	return &responseWriter{ResponseWriter: w, writer: writer{ctx: r.Context(), w: w, l: l}}
}

type writer struct {
	ctx context.Context
	w   io.Writer
	l   *Limiter
}

func (t *writer) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		lim := t.l.lim.Load()
		if lim.Limit() == rate.Inf {
			m, err := t.w.Write(p)
			return written + m, err
		}
		n := min(len(p), lim.Burst())
		if err := lim.WaitN(t.ctx, n); err != nil {
			return written, err
		}
		m, err := t.w.Write(p[:n])
		written += m
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}

type responseWriter struct {
	http.ResponseWriter
	writer writer
}

func (rw *responseWriter) Write(p []byte) (int, error) {
	return rw.writer.Write(p)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
