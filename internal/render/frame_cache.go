package render

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"hopskip/internal/game"
)

type encodedFrame struct {
	sequence uint64
	png      []byte
}

// FrameCache keeps the PNG of the most recent snapshot so that clients
// polling the same snapshot share one render. Snapshots without a sequence
// number are always rendered.
type FrameCache struct {
	renderer *Renderer
	latest   atomic.Pointer[encodedFrame]
	mu       sync.Mutex // serializes renders

	// Stats
	hits   uint64
	misses uint64
}

// NewFrameCache wraps r.
func NewFrameCache(r *Renderer) *FrameCache {
	return &FrameCache{renderer: r}
}

// EncodePNG writes the PNG for snap, rendering it only if the cached frame
// belongs to another snapshot.
func (c *FrameCache) EncodePNG(w io.Writer, snap *game.MatchSnapshot) error {
	if snap.Sequence == 0 {
		atomic.AddUint64(&c.misses, 1)
		return c.renderer.EncodePNG(w, snap)
	}

	frame := c.latest.Load()
	if frame == nil || frame.sequence != snap.Sequence {
		var err error
		if frame, err = c.render(snap); err != nil {
			return err
		}
	} else {
		atomic.AddUint64(&c.hits, 1)
	}

	if _, err := w.Write(frame.png); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (c *FrameCache) render(snap *game.MatchSnapshot) (*encodedFrame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Another request may have rendered this snapshot while we waited
	if frame := c.latest.Load(); frame != nil && frame.sequence == snap.Sequence {
		atomic.AddUint64(&c.hits, 1)
		return frame, nil
	}

	var buf bytes.Buffer
	if err := c.renderer.EncodePNG(&buf, snap); err != nil {
		return nil, err
	}
	atomic.AddUint64(&c.misses, 1)

	frame := &encodedFrame{sequence: snap.Sequence, png: buf.Bytes()}
	// Snapshots may arrive out of order; never replace a newer frame
	if cur := c.latest.Load(); cur == nil || cur.sequence < frame.sequence {
		c.latest.Store(frame)
	}
	return frame, nil
}

// GetStats returns cache hits and renders.
func (c *FrameCache) GetStats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}
