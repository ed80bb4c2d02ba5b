package telephony

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/executiveusa/synthia/internal/callsession"
	"github.com/executiveusa/synthia/pkg/audio"
)

// callerParameter is the TwiML <Parameter> name carrying the caller's phone
// number into the stream's customParameters.
const callerParameter = "caller"

// SessionFactory builds the per-call session once the stream's start
// message identifies the call.
type SessionFactory func(cfg callsession.Config) (*callsession.Session, error)

// StreamHandler terminates one Media Streams WebSocket per call and pumps
// its events through a [callsession.Session]. Messages are processed
// strictly in arrival order; the session requires it.
type StreamHandler struct {
	newSession SessionFactory
	log        *slog.Logger
}

// NewStreamHandler creates a handler that builds sessions with factory.
func NewStreamHandler(factory SessionFactory, log *slog.Logger) *StreamHandler {
	if log == nil {
		log = slog.Default()
	}
	return &StreamHandler{newSession: factory, log: log}
}

// ServeHTTP upgrades the connection and runs the stream loop until the call
// stops or the transport disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.log.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "call ended")

	h.serve(r.Context(), conn)
}

func (h *StreamHandler) serve(ctx context.Context, conn *websocket.Conn) {
	var (
		session   *callsession.Session
		streamSID string
	)

	// The stream may drop without a stop message; the session still gets
	// its teardown pass.
	defer func() {
		if session != nil && session.State() != callsession.StateComplete {
			if _, err := session.Hangup(ctx); err != nil {
				h.log.Warn("teardown after disconnect failed", "error", err)
			}
		}
	}()

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				errors.Is(err, context.Canceled) {
				return
			}
			h.log.Info("stream disconnected", "error", err)
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		msg, err := ParseMessage(data)
		if err != nil {
			h.log.Warn("unparseable stream message", "error", err)
			continue
		}

		switch msg.Event {
		case EventConnected:
			// Handshake preamble, nothing to do yet.

		case EventStart:
			if msg.Start == nil {
				h.log.Warn("start message without payload")
				continue
			}
			streamSID = msg.Start.StreamSID
			session, err = h.newSession(callsession.Config{
				CallSID: msg.Start.CallSID,
				Caller:  msg.Start.CustomParameters[callerParameter],
			})
			if err != nil {
				h.log.Error("session setup failed", "error", err)
				return
			}
			h.log.Info("stream started",
				"stream_sid", streamSID, "call_sid", msg.Start.CallSID)

			chunks, err := session.Connect(ctx)
			if err != nil {
				h.log.Error("connect failed", "error", err)
				continue
			}
			if err := h.sendResponse(ctx, conn, streamSID, chunks); err != nil {
				h.log.Warn("greeting send failed", "error", err)
				return
			}

		case EventMedia:
			if session == nil {
				continue
			}
			frame, err := msg.AudioFrame()
			if err != nil {
				h.log.Warn("bad media frame", "error", err)
				continue
			}
			if len(frame) != audio.InboundFrameSize {
				h.log.Warn("dropping media frame of unexpected size",
					"bytes", len(frame), "want", audio.InboundFrameSize)
				continue
			}
			chunks, err := session.HandleFrame(ctx, frame)
			if err != nil {
				h.log.Error("frame processing failed", "error", err)
				continue
			}
			if err := h.sendResponse(ctx, conn, streamSID, chunks); err != nil {
				h.log.Warn("response send failed", "error", err)
				return
			}

		case EventMark:
			if session != nil && msg.Mark != nil {
				session.HandleMark(msg.Mark.Name)
			}

		case EventDTMF:
			if session != nil && msg.DTMF != nil {
				session.HandleDTMF(msg.DTMF.Digit)
			}

		case EventStop:
			h.log.Info("stream stopped", "stream_sid", streamSID)
			if session != nil {
				if _, err := session.Hangup(ctx); err != nil {
					h.log.Warn("hangup processing failed", "error", err)
				}
			}
			return

		default:
			h.log.Debug("ignoring stream event", "event", msg.Event)
		}
	}
}

// sendResponse writes response audio as a run of media messages followed by
// one mark, so the far end reports when playback completes. A nil chunk
// slice is a no-op.
func (h *StreamHandler) sendResponse(ctx context.Context, conn *websocket.Conn, streamSID string, chunks [][]byte) error {
	if len(chunks) == 0 {
		return nil
	}
	for _, chunk := range chunks {
		data, err := MediaMessage(streamSID, chunk)
		if err != nil {
			return err
		}
		if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
			return err
		}
	}
	mark, err := MarkMessage(streamSID, "")
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, mark)
}
