package tts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

// StreamError is a synthesis failure reported by a streaming endpoint.
type StreamError struct {
	Code    int
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("tts: stream error %d: %s", e.Code, e.Message)
}

// Stream implements [Generator] against a websocket synthesis endpoint.
//
// The protocol is one request per connection: a JSON request frame, then
// binary frames carrying the encoded segment in order, closed by a JSON
// control frame. Frames after a control frame with Done set are ignored.
type Stream struct {
	url    string
	token  string
	dialer *websocket.Dialer
}

var _ Generator = (*Stream)(nil)

// NewStream creates a websocket generator for the given endpoint. token is
// sent as a bearer Authorization header; pass "" for unauthenticated
// endpoints.
func NewStream(url, token string) *Stream {
	return &Stream{
		url:    url,
		token:  token,
		dialer: websocket.DefaultDialer,
	}
}

type streamRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

type streamControl struct {
	Done    bool   `json:"done"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Generate synthesizes req over one websocket connection and returns the
// concatenated segment bytes.
func (s *Stream) Generate(ctx context.Context, req Request) ([]byte, error) {
	var header http.Header
	if s.token != "" {
		header = http.Header{"Authorization": []string{"Bearer " + s.token}}
	}
	conn, _, err := s.dialer.DialContext(ctx, s.url, header)
	if err != nil {
		return nil, fmt.Errorf("tts: connect websocket: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(streamRequest{
		Text:  req.Text,
		Voice: req.Voice,
		Speed: req.Speed,
	}); err != nil {
		return nil, fmt.Errorf("tts: send request: %w", err)
	}

	var audio []byte
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			return nil, fmt.Errorf("tts: read stream: %w", err)
		}

		switch msgType {
		case websocket.BinaryMessage:
			audio = append(audio, data...)
		case websocket.TextMessage:
			var ctl streamControl
			if err := json.Unmarshal(data, &ctl); err != nil {
				return nil, fmt.Errorf("tts: bad control frame: %w", err)
			}
			if ctl.Done {
				return audio, nil
			}
			return nil, &StreamError{Code: ctl.Code, Message: ctl.Message}
		}
	}
	return audio, nil
}
