package app

import (
	"io"
	"testing"

	"github.com/lbscek/sarvajna/internal/log"
	"go.uber.org/fx"
)

func TestServerGraphIsComplete(t *testing.T) {
	if err := fx.ValidateApp(log.ModuleTo(io.Discard), Server()); err != nil {
		t.Fatalf("expected a complete dependency graph, got %v", err)
	}
}

func TestCoreGraphIsComplete(t *testing.T) {
	if err := fx.ValidateApp(log.ModuleTo(io.Discard), Core()); err != nil {
		t.Fatalf("expected a complete dependency graph, got %v", err)
	}
}
