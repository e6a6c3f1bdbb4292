package audio_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voiced-trainer/internal/domain"
	"voiced-trainer/internal/infra/audio"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPSource_ReceiveUtterance(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	want := &domain.Utterance{Encoded: []byte("fake audio data"), Format: "wav"}

	go func() {
		time.Sleep(100 * time.Millisecond)
		source.Inject(want)
	}()

	got, err := source.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("receiving utterance: %v", err)
	}
	if !bytes.Equal(got.Encoded, want.Encoded) {
		t.Errorf("audio mismatch: got %d bytes, want %d bytes", len(got.Encoded), len(want.Encoded))
	}
}

func TestHTTPSource_AnswerEndpoint(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", testLogger())
	handler := source.Handler()

	req := httptest.NewRequest(http.MethodPost, "/answer", bytes.NewReader([]byte("test audio content")))
	req.Header.Set("Content-Type", "audio/mpeg")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("status code: got %d, want %d", rec.Code, http.StatusAccepted)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	utt, err := source.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("receiving posted audio: %v", err)
	}
	if utt.Format != "mp3" {
		t.Errorf("format: got %q, want mp3", utt.Format)
	}
}

func TestHTTPSource_TextEndpoint(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", testLogger())
	handler := source.Handler()

	req := httptest.NewRequest(http.MethodPost, "/text", strings.NewReader("  my answer  "))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status code: got %d, want %d", rec.Code, http.StatusAccepted)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	utt, err := source.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("receiving posted text: %v", err)
	}
	if utt.Text != "my answer" {
		t.Errorf("text: got %q, want %q", utt.Text, "my answer")
	}
}

func TestHTTPSource_AuthToken(t *testing.T) {
	authToken := "test-secret-token-123"
	source := audio.NewHTTPSource(":0", authToken, testLogger())
	handler := source.Handler()

	tests := []struct {
		name       string
		token      string
		method     string
		wantStatus int
	}{
		{
			name:       "valid token in header",
			token:      authToken,
			method:     "header",
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "valid token in query",
			token:      authToken,
			method:     "query",
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "invalid token",
			token:      "wrong-token",
			method:     "header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing token",
			token:      "",
			method:     "header",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := bytes.NewReader([]byte("some audio"))
			var req *http.Request

			if tt.method == "query" {
				req = httptest.NewRequest(http.MethodPost, "/answer?token="+tt.token, body)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/answer", body)
				if tt.token != "" {
					req.Header.Set("X-Auth-Token", tt.token)
				}
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status code: got %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHTTPSource_EmptyBodyRejected(t *testing.T) {
	source := audio.NewHTTPSource(":0", "", testLogger())
	handler := source.Handler()

	req := httptest.NewRequest(http.MethodPost, "/answer", bytes.NewReader(nil))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status code: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
