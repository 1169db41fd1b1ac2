package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// streamPoll is how often the stream checks for a new frame.
const streamPoll = 33 * time.Millisecond

// StreamHandler serves the annotated frames as MJPEG.
type StreamHandler struct {
	frames FrameSource
	stop   chan struct{}
	once   sync.Once
}

// NewStreamHandler creates a new StreamHandler over the given frame source.
func NewStreamHandler(frames FrameSource) *StreamHandler {
	return &StreamHandler{
		frames: frames,
		stop:   make(chan struct{}),
	}
}

// Close ends every open stream. Safe to call more than once.
func (h *StreamHandler) Close() {
	h.once.Do(func() { close(h.stop) })
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(streamPoll)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-h.stop:
			return
		case <-ticker.C:
		}

		jpeg, seq := h.frames.LatestFrame()
		if seq == last || len(jpeg) == 0 {
			continue
		}
		last = seq

		if err := writePart(w, jpeg); err != nil {
			return
		}

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

// writePart writes one multipart JPEG section.
func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\r\n")
	return err
}
