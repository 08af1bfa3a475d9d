package mirror

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoadTableParsesCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exports/tickets.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("id,status\n1,0\n2,1\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "exports")
	tbl, err := c.LoadTable(context.Background(), "tickets")
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if tbl.Len() != 2 || len(tbl.Cols) != 2 {
		t.Fatalf("unexpected table shape: %d rows, cols %v", tbl.Len(), tbl.Cols)
	}
}

func TestLoadTableNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := NewClient(srv.URL, "exports")
	_, err := c.LoadTable(context.Background(), "tickets")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadTableServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "exports")
	if _, err := c.LoadTable(context.Background(), "tickets"); err == nil {
		t.Fatalf("expected error on 500")
	}
}
