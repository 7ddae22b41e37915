package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowWithinBudget(t *testing.T) {
	l := New(3, time.Hour)
	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Fatalf("attempt %d: expected allow", i+1)
		}
	}
	if l.Allow("k") {
		t.Error("fourth attempt should be blocked")
	}
	if !l.Allow("other") {
		t.Error("independent key should be unaffected")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Hour)
	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("second attempt should be blocked")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("attempt after reset should be allowed")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:4242"
	if ip := ClientIP(r); ip != "10.0.0.1" {
		t.Errorf("remote addr: got %q", ip)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if ip := ClientIP(r); ip != "203.0.113.9" {
		t.Errorf("forwarded-for: got %q", ip)
	}
}

func TestLoginLimiter_BlocksEmailAcrossIPs(t *testing.T) {
	ll := NewLoginLimiterWithConfig(100, time.Hour, 2, time.Hour)

	r1 := httptest.NewRequest("POST", "/login", nil)
	r1.RemoteAddr = "10.0.0.1:1000"
	r2 := httptest.NewRequest("POST", "/login", nil)
	r2.RemoteAddr = "10.0.0.2:1000"

	if !ll.Check(r1, "target@example.com") || !ll.Check(r2, "target@example.com") {
		t.Fatal("first two attempts should be allowed")
	}
	r3 := httptest.NewRequest("POST", "/login", nil)
	r3.RemoteAddr = "10.0.0.3:1000"
	if ll.Check(r3, "target@example.com") {
		t.Error("third attempt on the same account should be blocked")
	}

	ll.ResetEmail("target@example.com")
	if !ll.Check(r3, "target@example.com") {
		t.Error("attempt after reset should be allowed")
	}
}
