package services_test

import (
	"context"
	"testing"

	"shotsync/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithShotID(ctx, "SH_010")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if shot, ok := services.ShotIDFromContext(ctx); !ok || shot != "SH_010" {
		t.Fatalf("unexpected shot id: %v %v", shot, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithShotID(services.WithRunID(ctx, ""), "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id")
	}
	if _, ok := services.ShotIDFromContext(ctx); ok {
		t.Fatal("expected no shot id")
	}
}
