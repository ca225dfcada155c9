// Package services – message composition
//
// This file renders the human-readable message bodies sent to contacts: the
// emergency alert (name, map link, timestamp) and the fixed test message.
// Composition is pure and deterministic for a given input.
package services

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/guardline/go-alert-backend/internal/domain"
)

const (
	// DefaultUserName is used in alert bodies when the request carries no
	// user name.
	DefaultUserName = "User"

	// DefaultContactName is used for contacts supplied without a name.
	DefaultContactName = "Emergency Contact"

	mapsLinkBase = "https://maps.google.com/?q="

	// timeLayout is the human-readable timestamp rendering used in alert
	// bodies (always UTC).
	timeLayout = "Monday, 2 January 2006 15:04:05 MST"
)

// nameCaser shapes display names ("bob smith" → "Bob Smith") for message
// bodies. English casing rules are fine for proper nouns in this context.
var nameCaser = cases.Title(language.English, cases.NoLower)

// ComposeAlert renders the emergency alert body for userName at loc. The
// body always contains the alert marker, the (defaulted) user name, a Google
// Maps link for the coordinates, and a readable rendering of ts.
func ComposeAlert(userName string, loc domain.Location, ts domain.Timestamp) string {
	name := displayName(userName, DefaultUserName)

	var b strings.Builder
	b.WriteString("🚨 EMERGENCY ALERT 🚨\n\n")
	fmt.Fprintf(&b, "%s may have been involved in a car accident and needs help.\n\n", name)
	fmt.Fprintf(&b, "Location: %s\n\n", MapsLink(loc))
	fmt.Fprintf(&b, "Time: %s\n\n", renderTimestamp(ts))
	fmt.Fprintf(&b, "This is an automated alert. Please try to reach %s or contact emergency services.", name)
	return b.String()
}

// ComposeTest renders the fixed test message body.
func ComposeTest() string {
	return "✅ This is a test message from your emergency alert service.\n\n" +
		"If you received this, your emergency contact setup is working correctly. No action is needed."
}

// MapsLink builds the Google Maps URL for loc using the shortest exact
// float rendering of each coordinate. loc must be valid.
func MapsLink(loc domain.Location) string {
	return mapsLinkBase + formatCoord(*loc.Lat) + "," + formatCoord(*loc.Lng)
}

// displayName trims and title-cases name, or returns fallback when empty.
func displayName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	return nameCaser.String(name)
}

// renderTimestamp prefers the parsed time; an unparseable token falls back
// to its raw form, and a wholly absent timestamp reads as "Unknown".
func renderTimestamp(ts domain.Timestamp) string {
	if !ts.Time.IsZero() {
		return ts.Time.UTC().Format(timeLayout)
	}
	if ts.Raw != "" {
		return ts.Raw
	}
	return "Unknown"
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
