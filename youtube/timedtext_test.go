package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hebscribe/retry"
)

// fastRetry keeps test retries from sleeping.
func fastRetry() *retry.Config {
	return &retry.Config{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0,
	}
}

func testClient(baseURL string) *TimedtextClient {
	c := NewTimedtextClient()
	c.BaseURL = baseURL
	c.RetryConfig = fastRetry()
	return c
}

const hebrewTrack = `{"events":[
	{"tStartMs":0,"dDurationMs":1000},
	{"tStartMs":0,"dDurationMs":2000,"segs":[{"utf8":"שלום"},{"utf8":" עולם"}]},
	{"tStartMs":2000,"dDurationMs":2000,"segs":[{"utf8":"שורה שנייה"}]}
]}`

func TestFetchHebrewCaptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("fmt"); got != "json3" {
			t.Errorf("fmt = %q, want json3", got)
		}
		if r.URL.Query().Get("lang") == "he" {
			w.Write([]byte(hebrewTrack))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	caption, err := testClient(srv.URL).Fetch(context.Background(), "dQw4w9WgXcQ", nil)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if caption.Language != "he" {
		t.Errorf("Language = %q, want he", caption.Language)
	}
	if want := "שלום עולם\nשורה שנייה"; caption.Text != want {
		t.Errorf("Text = %q, want %q", caption.Text, want)
	}
}

func TestFetchFallsBackToIw(t *testing.T) {
	var langsTried []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := r.URL.Query().Get("lang")
		langsTried = append(langsTried, lang)
		if lang == "iw" {
			w.Write([]byte(hebrewTrack))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	caption, err := testClient(srv.URL).Fetch(context.Background(), "dQw4w9WgXcQ", []string{"he", "iw"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if caption.Language != "iw" {
		t.Errorf("Language = %q, want iw", caption.Language)
	}
	if len(langsTried) == 0 || langsTried[0] != "he" {
		t.Errorf("languages tried = %v, want he first", langsTried)
	}
}

func TestFetchNoCaptions(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "dQw4w9WgXcQ", []string{"he", "iw"})
	if !errors.Is(err, ErrNoCaptions) {
		t.Fatalf("Fetch() error = %v, want ErrNoCaptions", err)
	}

	var capErr *CaptionError
	if !errors.As(err, &capErr) {
		t.Fatal("Fetch() error should be a *CaptionError")
	}
	if capErr.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("CaptionError.VideoID = %q, want dQw4w9WgXcQ", capErr.VideoID)
	}

	// 404 is permanent per language: one request per language, no retries.
	if requests != 2 {
		t.Errorf("server got %d requests, want 2", requests)
	}
}

func TestFetchEmptyEventsIsNoCaptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"events":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "dQw4w9WgXcQ", []string{"he"})
	if !errors.Is(err, ErrNoCaptions) {
		t.Errorf("Fetch() error = %v, want ErrNoCaptions", err)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(hebrewTrack))
	}))
	defer srv.Close()

	caption, err := testClient(srv.URL).Fetch(context.Background(), "dQw4w9WgXcQ", []string{"he"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if caption.Text == "" {
		t.Error("Fetch() returned empty text after retries")
	}
	if requests != 3 {
		t.Errorf("server got %d requests, want 3", requests)
	}
}

func TestFetchRequiresVideoID(t *testing.T) {
	if _, err := testClient("http://unused").Fetch(context.Background(), "", nil); err == nil {
		t.Error("Fetch() with empty video ID should fail")
	}
}

func TestRenderTimedtext(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "empty payload",
			input: "",
			want:  "",
		},
		{
			name:  "no events",
			input: `{"events":[]}`,
			want:  "",
		},
		{
			name:  "segless events skipped",
			input: `{"events":[{"tStartMs":0,"dDurationMs":100}]}`,
			want:  "",
		},
		{
			name:  "segments joined within event",
			input: `{"events":[{"segs":[{"utf8":"a"},{"utf8":"b"}]}]}`,
			want:  "ab",
		},
		{
			name:  "events joined with newlines",
			input: `{"events":[{"segs":[{"utf8":"one"}]},{"segs":[{"utf8":"two"}]}]}`,
			want:  "one\ntwo",
		},
		{
			name:  "whitespace-only event dropped",
			input: `{"events":[{"segs":[{"utf8":"  \n"}]},{"segs":[{"utf8":"text"}]}]}`,
			want:  "text",
		},
		{
			name:    "invalid JSON",
			input:   `{"events":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderTimedtext([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("renderTimedtext() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("renderTimedtext() = %q, want %q", got, tt.want)
			}
		})
	}
}
