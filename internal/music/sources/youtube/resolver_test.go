package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchFirstVideoURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search_query") == "" {
			http.Error(w, "missing query", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"url":"/watch?v=dQw4w9WgXcQ&pp=ygUF"}`))
	}))
	defer srv.Close()

	r := NewSearchResolver()
	r.BaseURL = srv.URL
	r.Client = srv.Client()

	got, err := r.SearchFirstVideoURL(context.Background(), "never gonna give you up")
	if err != nil {
		t.Fatalf("SearchFirstVideoURL: %v", err)
	}
	want := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSearchFirstVideoURLNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>nothing here</html>`))
	}))
	defer srv.Close()

	r := NewSearchResolver()
	r.BaseURL = srv.URL
	r.Client = srv.Client()

	_, err := r.SearchFirstVideoURL(context.Background(), "gibberish")
	if !errors.Is(err, ErrNoVideoMatch) {
		t.Errorf("got %v, want ErrNoVideoMatch", err)
	}
}

func TestSearchFirstVideoURLBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := NewSearchResolver()
	r.BaseURL = srv.URL
	r.Client = srv.Client()

	if _, err := r.SearchFirstVideoURL(context.Background(), "anything"); err == nil {
		t.Error("expected error for non-200 status")
	}
}
