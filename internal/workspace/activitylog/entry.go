// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package activitylog records and serves the per-organization activity log.

Every mutation of an org-scoped resource appends an [Entry]. Admins read the
log through GET /api/v1/logs; nothing else ever reads across organizations.
*/
package activitylog

import (
	"fmt"
	"time"
)

// Level is the severity of a log entry.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// ParseLevel validates a level from user input.
func ParseLevel(value string) (Level, error) {
	switch level := Level(value); level {
	case LevelDebug, LevelInfo, LevelWarning, LevelError:
		return level, nil
	default:
		return "", fmt.Errorf("activitylog: unknown level %q", value)
	}
}

// Entry is one row of the activity log.
type Entry struct {
	ID          string         `json:"id"`
	OrgID       string         `json:"org_id"`
	AssistantID string         `json:"assistant_id,omitempty"`
	Level       Level          `json:"level"`
	Message     string         `json:"message"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Filter narrows a log listing.
type Filter struct {
	Level       Level
	AssistantID string
	Limit       int
	Offset      int
}
