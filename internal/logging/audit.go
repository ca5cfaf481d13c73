// Gamecatalog - Game Catalog, Ratings and Reviews API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecatalog

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// AuditEvent is a security or moderation relevant action.
type AuditEvent struct {
	// Action names what happened: login, register, role_change,
	// review_moderated, snapshot_restore.
	Action   string
	ActorID  string
	Username string
	TargetID string
	IP       string
	Success  bool
	Reason   string
	Details  map[string]string
}

// AuditLogger writes audit entries with identifiers masked.
type AuditLogger struct {
	logger zerolog.Logger
}

// NewAuditLogger creates an audit logger on the global logger.
func NewAuditLogger() *AuditLogger {
	return &AuditLogger{logger: WithComponent("audit")}
}

// NewAuditLoggerWithLogger creates an audit logger on a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuditLoggerWithLogger(logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.With().Str("component", "audit").Logger()}
}

// Log writes one audit entry. Failed actions are logged at warn level.
func (l *AuditLogger) Log(ev *AuditEvent) {
	e := l.logger.Info()
	status := "success"
	if !ev.Success {
		e = l.logger.Warn()
		status = "failed"
	}
	e = e.Str("action", ev.Action).Str("status", status)

	if ev.ActorID != "" {
		e = e.Str("actor_id", SanitizeID(ev.ActorID))
	}
	if ev.Username != "" {
		e = e.Str("username", SanitizeUsername(ev.Username))
	}
	if ev.TargetID != "" {
		e = e.Str("target_id", ev.TargetID)
	}
	if ev.IP != "" {
		e = e.Str("ip", ev.IP)
	}
	if ev.Reason != "" {
		e = e.Str("reason", truncateString(ev.Reason, 200))
	}
	for k, v := range ev.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}
	e.Msg("audit")
}

// LogLogin records a login attempt.
func (l *AuditLogger) LogLogin(userID, username, ip string, success bool, reason string) {
	l.Log(&AuditEvent{Action: "login", ActorID: userID, Username: username, IP: ip, Success: success, Reason: reason})
}

// LogRegister records a new account.
func (l *AuditLogger) LogRegister(userID, username, ip string) {
	l.Log(&AuditEvent{Action: "register", ActorID: userID, Username: username, IP: ip, Success: true})
}

// LogRoleChange records an admin changing a user's role.
func (l *AuditLogger) LogRoleChange(actorID, targetID, from, to string) {
	l.Log(&AuditEvent{
		Action:   "role_change",
		ActorID:  actorID,
		TargetID: targetID,
		Success:  true,
		Details:  map[string]string{"from": from, "to": to},
	})
}

// LogModeration records a moderator changing a review's status.
func (l *AuditLogger) LogModeration(actorID, reviewID, status, reason string) {
	l.Log(&AuditEvent{
		Action:   "review_moderated",
		ActorID:  actorID,
		TargetID: reviewID,
		Success:  true,
		Reason:   reason,
		Details:  map[string]string{"status": status},
	})
}

// LogSnapshot records an administrative snapshot operation: create,
// delete or restore.
func (l *AuditLogger) LogSnapshot(actorID, action, snapshotID string, err error) {
	ev := &AuditEvent{Action: "snapshot_" + action, ActorID: actorID, TargetID: snapshotID, Success: err == nil}
	if err != nil {
		ev.Reason = err.Error()
	}
	l.Log(ev)
}

// SanitizeToken masks a token, showing only first and last 4 characters.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeID masks an identifier for privacy.
// Example: "a1b2c3d4e5f6" -> "a1b2...e5f6"
func SanitizeID(id string) string {
	if id == "" {
		return ""
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:4] + "..." + id[len(id)-4:]
}

// SanitizeUsername keeps the first 2 characters.
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// SanitizeEmail masks the local part of an address.
// Example: "john.doe@example.com" -> "jo***@example.com"
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

var sensitiveKeys = map[string]bool{
	"token":         true,
	"access_token":  true,
	"password":      true,
	"secret":        true,
	"authorization": true,
	"cookie":        true,
}

// SanitizeValue masks value when its key or shape looks sensitive.
func SanitizeValue(key, value string) string {
	if sensitiveKeys[strings.ToLower(key)] {
		return SanitizeToken(value)
	}
	if strings.Contains(value, "@") && strings.Contains(value, ".") {
		return SanitizeEmail(value)
	}
	return value
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
