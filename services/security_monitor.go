package services

import (
	"sync"
	"time"

	"lexcase_api_go/logger"
)

const (
	failedLoginWindow    = 10 * time.Minute
	failedLoginThreshold = 5
	alertCooldown        = time.Hour
	maxAlerts            = 100
)

// SecurityMonitor counts failed logins per client IP and raises an alert when
// one address crosses the threshold inside the window
type SecurityMonitor struct {
	mu           sync.Mutex
	failedLogins map[string][]time.Time
	alertedIPs   map[string]time.Time
	alerts       []SecurityAlert
	now          func() time.Time
}

// SecurityAlert represents a triggered security alert
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Reason    string    `json:"reason"`
	Level     string    `json:"level"` // "WARNING", "CRITICAL"
}

func NewSecurityMonitor() *SecurityMonitor {
	return &SecurityMonitor{
		failedLogins: make(map[string][]time.Time),
		alertedIPs:   make(map[string]time.Time),
		now:          time.Now,
	}
}

// TrackFailedLogin records a failed login attempt and checks for threshold
func (m *SecurityMonitor) TrackFailedLogin(ip string) {
	if ip == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Add(-failedLoginWindow)
	attempts := m.failedLogins[ip][:0]
	for _, t := range m.failedLogins[ip] {
		if t.After(windowStart) {
			attempts = append(attempts, t)
		}
	}
	m.failedLogins[ip] = append(attempts, now)

	if len(m.failedLogins[ip]) >= failedLoginThreshold {
		m.triggerAlertLocked(now, ip, "Multiple failed logins detected")
	}
	m.sweepLocked(now)
}

// triggerAlertLocked records and logs an alert, at most once per cooldown per IP
func (m *SecurityMonitor) triggerAlertLocked(now time.Time, ip, reason string) {
	if last, ok := m.alertedIPs[ip]; ok && now.Sub(last) < alertCooldown {
		return
	}
	m.alertedIPs[ip] = now

	// newest first
	m.alerts = append([]SecurityAlert{{Timestamp: now, IP: ip, Reason: reason, Level: "CRITICAL"}}, m.alerts...)
	if len(m.alerts) > maxAlerts {
		m.alerts = m.alerts[:maxAlerts]
	}

	logger.Component("security").WithField("ip", ip).Warn("[SECURITY ALERT] " + reason)
}

// sweepLocked drops addresses whose attempts and alerts have aged out
func (m *SecurityMonitor) sweepLocked(now time.Time) {
	for ip, attempts := range m.failedLogins {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > failedLoginWindow {
			delete(m.failedLogins, ip)
		}
	}
	for ip, last := range m.alertedIPs {
		if now.Sub(last) > alertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
}

// RecentAlerts returns a copy of recent alerts
func (m *SecurityMonitor) RecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	alerts := make([]SecurityAlert, len(m.alerts))
	copy(alerts, m.alerts)
	return alerts
}
