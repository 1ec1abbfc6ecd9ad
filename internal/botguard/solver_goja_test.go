//go:build botguard

package botguard

import (
	"context"
	"testing"
	"time"
)

func TestGojaSolver_StringToken(t *testing.T) {
	s, err := newGojaSolver("inline.js", `function bgAttest(input) { return "tok-" + input.clientName; }`)
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Attest(context.Background(), Input{ClientName: "WEB"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Token != "tok-WEB" {
		t.Errorf("token = %q", out.Token)
	}
}

func TestGojaSolver_ObjectWithTTL(t *testing.T) {
	s, err := newGojaSolver("inline.js", `function bgAttest(input) { return {token: "abc", ttlSeconds: 60}; }`)
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Attest(context.Background(), Input{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Token != "abc" || time.Until(out.ExpiresAt) <= 0 {
		t.Errorf("unexpected output %+v", out)
	}
}

func TestGojaSolver_Interrupted(t *testing.T) {
	s, err := newGojaSolver("inline.js", `function bgAttest(input) { for (;;) {} }`)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := s.Attest(ctx, Input{}); err == nil {
		t.Fatal("expected interruption error")
	}
}

func TestGojaSolver_MissingFunction(t *testing.T) {
	s, err := newGojaSolver("inline.js", `var x = 1;`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Attest(context.Background(), Input{}); err == nil {
		t.Fatal("expected error")
	}
}
