package tts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func TestOpenAIGenerate(t *testing.T) {
	payload := []byte("RIFF....WAVE pretend audio")
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(payload)
	}))
	defer srv.Close()

	g := NewOpenAI("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	audio, err := g.Generate(context.Background(), Request{Text: "Hello.", Voice: "nova"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(audio) != string(payload) {
		t.Fatalf("audio = %q, want %q", audio, payload)
	}
	if !strings.HasSuffix(gotPath, "/audio/speech") {
		t.Fatalf("request path = %q, want audio/speech endpoint", gotPath)
	}
}

func wsTestServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStreamGenerate(t *testing.T) {
	srv := wsTestServer(t, func(conn *websocket.Conn) {
		var req streamRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if req.Text != "Hello." {
			conn.WriteJSON(streamControl{Code: 400, Message: "bad text"})
			return
		}
		conn.WriteMessage(websocket.BinaryMessage, []byte("part1-"))
		conn.WriteMessage(websocket.BinaryMessage, []byte("part2"))
		conn.WriteJSON(streamControl{Done: true})
	})
	defer srv.Close()

	g := NewStream(wsURL(srv), "secret")
	audio, err := g.Generate(context.Background(), Request{Text: "Hello."})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(audio) != "part1-part2" {
		t.Fatalf("audio = %q, want frames concatenated in order", audio)
	}
}

func TestStreamGenerateSendsAuth(t *testing.T) {
	var gotAuth string
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var req streamRequest
		conn.ReadJSON(&req)
		conn.WriteJSON(streamControl{Done: true})
	}))
	defer srv.Close()

	g := NewStream(wsURL(srv), "secret")
	if _, err := g.Generate(context.Background(), Request{Text: "x"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestStreamGenerateError(t *testing.T) {
	srv := wsTestServer(t, func(conn *websocket.Conn) {
		var req streamRequest
		conn.ReadJSON(&req)
		conn.WriteJSON(streamControl{Code: 429, Message: "over quota"})
	})
	defer srv.Close()

	g := NewStream(wsURL(srv), "")
	_, err := g.Generate(context.Background(), Request{Text: "x"})
	var se *StreamError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StreamError", err)
	}
	if se.Code != 429 {
		t.Fatalf("code = %d, want 429", se.Code)
	}
}

func TestGeneratorFunc(t *testing.T) {
	g := GeneratorFunc(func(_ context.Context, req Request) ([]byte, error) {
		return []byte(req.Text), nil
	})
	audio, err := g.Generate(context.Background(), Request{Text: "echo"})
	if err != nil || string(audio) != "echo" {
		t.Fatalf("Generate = (%q, %v)", audio, err)
	}
}
