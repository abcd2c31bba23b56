package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"symbol":"` + r.URL.Query().Get("symbol") + `"}`))
		default:
			http.Error(w, "missing", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(WithHeader("X-Api-Key", "k"))

	var out struct {
		Symbol string `json:"symbol"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         srv.URL + "/ok",
		QueryParams: map[string][]string{"symbol": {"AAPL"}},
	}, &out)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if out.Symbol != "AAPL" {
		t.Fatalf("symbol = %q", out.Symbol)
	}

	err = c.SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL + "/nope"}, &out)
	if !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404 status error, got %v", err)
	}
}

func TestStatusErrorTemporary(t *testing.T) {
	cases := map[int]bool{429: true, 500: true, 503: true, 404: false, 400: false}
	for code, want := range cases {
		if got := (&StatusError{Code: code}).Temporary(); got != want {
			t.Errorf("%d: temporary = %v", code, got)
		}
	}
}
