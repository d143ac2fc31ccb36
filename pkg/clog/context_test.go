package clog

import (
	"context"
	"testing"
)

func TestContextWithSlogInheritsParentAttributes(t *testing.T) {
	parent := ContextWithSlog(context.Background())
	AddAttribute(parent, "run", "01ABC")

	child := ContextWithSlog(parent)
	if got := GetAttribute[string](child, "run"); got != "01ABC" {
		t.Errorf("expected child to inherit run attribute, got %q", got)
	}

	// The child owns its copy; later writes must not leak either way.
	AddAttribute(child, "repo", "svc")
	if got := GetAttribute[string](parent, "repo"); got != "" {
		t.Errorf("child attribute leaked into parent: %q", got)
	}
	AddAttribute(parent, "after", "x")
	if got := GetAttribute[string](child, "after"); got != "" {
		t.Errorf("parent attribute leaked into child: %q", got)
	}
}

func TestGetAttributeWithoutCarrier(t *testing.T) {
	if got := GetAttribute[string](context.Background(), "run"); got != "" {
		t.Errorf("expected zero value without a carrier, got %q", got)
	}
	if attrs := GetAttributes(context.Background()); attrs != nil {
		t.Errorf("expected nil attributes without a carrier, got %v", attrs)
	}
}
