package ratelimit

import (
	"net/http"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCheckLogin_Lockout(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MaxAttempts:  3,
		Lockout:      5 * time.Minute,
		MaxIPPerHour: 30,
		Clock:        clock,
	})
	defer limiter.Close()

	ip := "192.168.1.4"

	// First 3 attempts should be allowed, recording each failure
	for i := 0; i < 3; i++ {
		result := limiter.CheckLogin(ip)
		if !result.Allowed {
			t.Errorf("Attempt %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		lockedOut := limiter.RecordFailure(ip)
		if i < 2 && lockedOut {
			t.Errorf("Attempt %d should not trigger lockout", i+1)
		}
		if i == 2 && !lockedOut {
			t.Error("3rd attempt should trigger lockout")
		}
	}

	// 4th attempt should be blocked
	result := limiter.CheckLogin(ip)
	if result.Allowed {
		t.Error("4th attempt should be blocked (lockout)")
	}
	if result.Reason != "lockout" {
		t.Errorf("Expected reason 'lockout', got '%s'", result.Reason)
	}
	if result.RetryAfter != 5*time.Minute {
		t.Errorf("Expected RetryAfter 5m, got %v", result.RetryAfter)
	}

	// After lockout expires, should be allowed
	clock.Advance(5*time.Minute + 1*time.Second)
	result = limiter.CheckLogin(ip)
	if !result.Allowed {
		t.Errorf("Attempt after lockout should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckLogin_ResetOnSuccess(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MaxAttempts:  3,
		Lockout:      5 * time.Minute,
		MaxIPPerHour: 30,
		Clock:        clock,
	})
	defer limiter.Close()

	ip := "192.168.1.5"

	// Make 2 failed attempts
	for i := 0; i < 2; i++ {
		result := limiter.CheckLogin(ip)
		if !result.Allowed {
			t.Errorf("Attempt %d should be allowed", i+1)
		}
		limiter.RecordFailure(ip)
	}

	// Reset on successful login
	limiter.ResetAttempts(ip)

	// Should be able to make 3 more attempts
	for i := 0; i < 3; i++ {
		result := limiter.CheckLogin(ip)
		if !result.Allowed {
			t.Errorf("Attempt %d after reset should be allowed, got blocked: %s", i+1, result.Reason)
		}
		limiter.RecordFailure(ip)
	}

	// 4th should be blocked
	result := limiter.CheckLogin(ip)
	if result.Allowed {
		t.Error("4th attempt after reset should be blocked")
	}
}

func TestCheckLogin_IPHourlyLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MaxAttempts:  100,
		Lockout:      5 * time.Minute,
		MaxIPPerHour: 2,
		Clock:        clock,
	})
	defer limiter.Close()

	ip := "192.168.1.6"

	// First 2 attempts should be allowed
	for i := 0; i < 2; i++ {
		result := limiter.CheckLogin(ip)
		if !result.Allowed {
			t.Errorf("Attempt %d should be allowed, got blocked: %s", i+1, result.Reason)
		}
		limiter.RecordFailure(ip)
	}

	// 3rd attempt from same IP should be blocked
	result := limiter.CheckLogin(ip)
	if result.Allowed {
		t.Error("3rd attempt from same IP should be blocked")
	}
	if result.Reason != "ip_hourly_limit" {
		t.Errorf("Expected reason 'ip_hourly_limit', got '%s'", result.Reason)
	}

	// After hour passes, should be allowed again
	clock.Advance(1 * time.Hour)
	result = limiter.CheckLogin(ip)
	if !result.Allowed {
		t.Errorf("Attempt after hour should be allowed, got blocked: %s", result.Reason)
	}
}

func TestCheckLogin_SeparateIPs(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MaxAttempts:  2,
		Lockout:      5 * time.Minute,
		MaxIPPerHour: 30,
		Clock:        clock,
	})
	defer limiter.Close()

	// Lock out one IP
	for i := 0; i < 2; i++ {
		limiter.RecordFailure("192.168.1.7")
	}
	if result := limiter.CheckLogin("192.168.1.7"); result.Allowed {
		t.Error("locked-out IP should be blocked")
	}

	// Another IP is unaffected
	if result := limiter.CheckLogin("192.168.1.8"); !result.Allowed {
		t.Errorf("other IP should be allowed, got blocked: %s", result.Reason)
	}
}

func TestGetClientIP_TrustProxy(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		trustProxy bool
		expected   string
	}{
		{
			name:       "TrustProxy=true, XFF rightmost public IP",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.50", // Rightmost non-private
		},
		{
			name:       "TrustProxy=true, XFF all private",
			headers:    map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "10.0.0.1", // Last one when all private
		},
		{
			name:       "TrustProxy=true, X-Real-IP",
			headers:    map[string]string{"X-Real-IP": "203.0.113.51"},
			remoteAddr: "10.0.0.1:12345",
			trustProxy: true,
			expected:   "203.0.113.51",
		},
		{
			name:       "TrustProxy=false, ignores XFF",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.50"},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: false,
			expected:   "192.168.1.100", // Uses RemoteAddr, ignores spoofed XFF
		},
		{
			name:       "No headers, RemoteAddr only",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.100:54321",
			trustProxy: true,
			expected:   "192.168.1.100",
		},
		{
			name:       "RemoteAddr without port",
			headers:    map[string]string{},
			remoteAddr: "192.168.1.100",
			trustProxy: false,
			expected:   "192.168.1.100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			got := GetClientIP(r, tt.trustProxy)
			if got != tt.expected {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetClientIP_SpoofingPrevention(t *testing.T) {
	// Attacker sends fake X-Forwarded-For header
	r, _ := http.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "1.2.3.4") // Attacker-supplied
	r.RemoteAddr = "192.168.1.100:54321"       // Real connection

	// With TrustProxy=false, the fake header is ignored
	got := GetClientIP(r, false)
	if got != "192.168.1.100" {
		t.Errorf("Should ignore X-Forwarded-For when TrustProxy=false, got %q", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.MaxAttempts)
	}
	if cfg.Lockout != 5*time.Minute {
		t.Errorf("Lockout = %v, want 5m", cfg.Lockout)
	}
	if cfg.MaxIPPerHour != 30 {
		t.Errorf("MaxIPPerHour = %d, want 30", cfg.MaxIPPerHour)
	}
}

func TestNew_NilConfig(t *testing.T) {
	limiter := New(nil)
	defer limiter.Close()

	if limiter == nil {
		t.Error("New(nil) should return a valid limiter")
	}
	if limiter.config.MaxAttempts != 5 {
		t.Error("New(nil) should use default config")
	}
}

func TestLimiter_Close(t *testing.T) {
	limiter := New(nil)

	// Trigger cleanup goroutine
	limiter.CheckLogin("1.2.3.4")

	// Close should not hang
	done := make(chan struct{})
	go func() {
		limiter.Close()
		close(done)
	}()

	select {
	case <-done:
		// Success
	case <-time.After(1 * time.Second):
		t.Error("Close() should not hang")
	}
}

func TestConcurrentAccess(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		MaxAttempts:  1000,
		Lockout:      5 * time.Minute,
		MaxIPPerHour: 100000,
		Clock:        clock,
	})
	defer limiter.Close()

	var wg sync.WaitGroup
	numGoroutines := 100
	numOps := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ip := "192.168.1.1"
			for j := 0; j < numOps; j++ {
				result := limiter.CheckLogin(ip)
				if result.Allowed {
					limiter.RecordFailure(ip)
				}
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				limiter.ResetAttempts("192.168.1.1")
			}
		}()
	}

	wg.Wait()
	// If we get here without race detector complaints, test passes
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip       string
		expected bool
	}{
		// IPv4 private ranges
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		// IPv6 private/reserved
		{"::1", true},
		{"fc00::1", true},
		{"fe80::1", true}, // Link-local
		// IPv4-mapped IPv6 addresses (must match their IPv4 equivalents)
		{"::ffff:192.168.1.1", true},
		{"::ffff:8.8.8.8", false}, // Public IP in IPv4-mapped format
		// Public IPs
		{"203.0.113.50", false},
		{"8.8.8.8", false},
		{"2001:4860:4860::8888", false}, // Google DNS IPv6
		// Invalid
		{"invalid", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			got := isPrivateIP(tt.ip)
			if got != tt.expected {
				t.Errorf("isPrivateIP(%q) = %v, want %v", tt.ip, got, tt.expected)
			}
		})
	}
}

func TestCheckAndRecord_SeparateOps(t *testing.T) {
	// Verify that Check doesn't consume quota - only Record does
	clock := newMockClock()
	limiter := New(&Config{
		MaxAttempts:  1,
		Lockout:      5 * time.Minute,
		MaxIPPerHour: 100,
		Clock:        clock,
	})
	defer limiter.Close()

	ip := "192.168.1.1"

	// Multiple checks should all be allowed (no recording)
	for i := 0; i < 10; i++ {
		result := limiter.CheckLogin(ip)
		if !result.Allowed {
			t.Errorf("Check %d should be allowed without prior Record", i+1)
		}
	}

	// Now record once
	limiter.RecordFailure(ip)

	// Next check should be blocked
	result := limiter.CheckLogin(ip)
	if result.Allowed {
		t.Error("Check after Record should be blocked")
	}
}
