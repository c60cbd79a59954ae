package middleware

import (
	"testing"
	"time"
)

func TestIPRateLimiter_Allow(t *testing.T) {
	rl := NewIPRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("request over the limit should be denied")
	}

	// Other IPs have their own budget
	if !rl.Allow("10.0.0.2") {
		t.Fatalf("different IP should be allowed")
	}
}

func TestIPRateLimiter_WindowExpiry(t *testing.T) {
	rl := NewIPRateLimiter(1, 30*time.Millisecond)

	if !rl.Allow("10.0.0.1") {
		t.Fatalf("first request should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("second request inside window should be denied")
	}

	time.Sleep(40 * time.Millisecond)

	if !rl.Allow("10.0.0.1") {
		t.Fatalf("request after window expiry should be allowed")
	}
}
