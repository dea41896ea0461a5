package blobstore

import (
	"context"
	"errors"
	"testing"

	"github.com/Seikonolff/map-to-seventy/internal/core/domain"
)

func TestStore_PutGet(t *testing.T) {
	ctx := context.Background()
	for _, url := range []string{"mem://", "file://" + t.TempDir()} {
		t.Run(url, func(t *testing.T) {
			s, err := Open(ctx, url)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer s.Close()

			if err := s.Put(ctx, "maps/abc.html", []byte("<html></html>"), "text/html"); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := s.Get(ctx, "maps/abc.html")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != "<html></html>" {
				t.Errorf("got %q", got)
			}
			if err := s.Ping(ctx); err != nil {
				t.Errorf("ping: %v", err)
			}
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	s, err := Open(context.Background(), "mem://")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	_, err = s.Get(context.Background(), "maps/none.html")
	if !errors.Is(err, domain.ErrMapNotFound) {
		t.Fatalf("expected ErrMapNotFound, got %v", err)
	}
}

func TestOpen_UnknownScheme(t *testing.T) {
	if _, err := Open(context.Background(), "nope://bucket"); err == nil {
		t.Fatal("expected error for unregistered scheme")
	}
}
