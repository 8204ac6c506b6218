// api/models/event.go
package models

import (
	"time"
)

const (
	EventTypePageview   = "pageview"
	EventTypeSessionEnd = "session_end"
	EventTypeEngagement = "engagement"
)

// AnalyticsEvent is one client-reported occurrence. Only the identification
// fields and Timestamp take part in reporting; the rest is stored verbatim.
type AnalyticsEvent struct {
	ID           string     `json:"_id"`
	VisitorID    string     `json:"visitorId" binding:"required"`
	SessionID    string     `json:"sessionId" binding:"required"`
	IsNewVisitor bool       `json:"isNewVisitor"`
	Type         string     `json:"type" binding:"required,oneof=pageview session_end engagement"`
	Timestamp    *time.Time `json:"timestamp" binding:"required"`
	SessionStart *time.Time `json:"sessionStart,omitempty"`
	IPAddress    string     `json:"ipAddress,omitempty"`

	EventDetails
}

// EventDetails holds the descriptive payload of an event.
type EventDetails struct {
	LocalTime string `json:"localTime,omitempty"`

	// Navigation
	URL      string `json:"url,omitempty"`
	Path     string `json:"path,omitempty"`
	Query    string `json:"query,omitempty"`
	Hash     string `json:"hash,omitempty"`
	Referrer string `json:"referrer,omitempty"`

	// Device
	UserAgent           string   `json:"userAgent,omitempty"`
	Language            string   `json:"language,omitempty"`
	Languages           string   `json:"languages,omitempty"`
	ScreenResolution    string   `json:"screenResolution,omitempty"`
	Viewport            string   `json:"viewport,omitempty"`
	ColorDepth          *float64 `json:"colorDepth,omitempty"`
	Timezone            string   `json:"timezone,omitempty"`
	DeviceMemory        *float64 `json:"deviceMemory,omitempty"`
	HardwareConcurrency *float64 `json:"hardwareConcurrency,omitempty"`
	DeviceType          string   `json:"deviceType,omitempty"`
	Browser             string   `json:"browser,omitempty"`
	BrowserVersion      string   `json:"browserVersion,omitempty"`
	OS                  string   `json:"os,omitempty"`

	Connection *Connection `json:"connection,omitempty"`

	// Privacy
	CookiesEnabled *bool  `json:"cookiesEnabled,omitempty"`
	DoNotTrack     string `json:"doNotTrack,omitempty"`

	Performance *Performance `json:"performance,omitempty"`
	Geolocation *Geolocation `json:"geolocation,omitempty"`
}

type Connection struct {
	EffectiveType string   `json:"effectiveType,omitempty"`
	Downlink      *float64 `json:"downlink,omitempty"`
	RTT           *float64 `json:"rtt,omitempty"`
	SaveData      *bool    `json:"saveData,omitempty"`
}

type Performance struct {
	LoadTime      *float64 `json:"loadTime,omitempty"`
	DomReady      *float64 `json:"domReady,omitempty"`
	RedirectCount *float64 `json:"redirectCount,omitempty"`
}

type Geolocation struct {
	Latitude  *float64   `json:"latitude,omitempty"`
	Longitude *float64   `json:"longitude,omitempty"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Method    string     `json:"method,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type TopPathResult struct {
	Path  string `json:"path"`
	Count uint64 `json:"count"`
}

type EventCountByTime struct {
	Time  time.Time `json:"time"`
	Type  *string   `json:"type,omitempty"`
	Count uint64    `json:"count"`
}
