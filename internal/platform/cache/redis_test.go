package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := New(context.Background(), addr); err == nil {
		t.Fatal("expected ping failure")
	}
}

func TestNewEmbedded(t *testing.T) {
	client, cleanup, err := NewEmbedded(context.Background())
	if err != nil {
		t.Fatalf("NewEmbedded: %v", err)
	}
	defer cleanup()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
}
