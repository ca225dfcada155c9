// Package domain defines the wire-level and persistence models of the alert
// relay: inbound alert requests (contacts, location, timestamp), per-contact
// dispatch results, and the aggregate outcome returned to the caller.
//
// Inbound JSON is deliberately tolerant: clients historically send contacts
// either as bare phone strings or as objects, timestamps either as epoch
// milliseconds or as strings, and coordinates of dubious types. All of that
// is normalized here, at the boundary, so core logic only ever sees one
// canonical shape. Shape problems surface as validation errors in the
// service layer rather than as JSON decode failures.
package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Contact is one alert recipient. Name is optional; the dispatch layer
// substitutes a default when it is empty.
//
// A Contact decodes from either JSON form:
//
//	"+14155551234"
//	{"phone": "+14155551234", "name": "Bob"}
type Contact struct {
	Phone string `json:"phone"`
	Name  string `json:"name,omitempty"`
}

// UnmarshalJSON accepts both the bare-string and the object encoding.
func (c *Contact) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		c.Phone = s
		c.Name = ""
		return nil
	}

	var obj struct {
		Phone string `json:"phone"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	c.Phone = obj.Phone
	c.Name = obj.Name
	return nil
}

// Location is a WGS84 coordinate pair. Lat and Lng are pointers so that a
// missing or non-numeric value is observable as nil instead of a zero
// coordinate; Valid distinguishes the two.
type Location struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// Valid reports whether both coordinates were supplied as numbers.
func (l Location) Valid() bool { return l.Lat != nil && l.Lng != nil }

// UnmarshalJSON tolerates non-numeric coordinate values by leaving the
// corresponding pointer nil. A location that is not an object at all also
// decodes to the invalid zero value rather than failing the whole request.
func (l *Location) UnmarshalJSON(b []byte) error {
	var raw struct {
		Lat any `json:"lat"`
		Lng any `json:"lng"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		l.Lat, l.Lng = nil, nil
		return nil
	}
	l.Lat = asFloat(raw.Lat)
	l.Lng = asFloat(raw.Lng)
	return nil
}

// asFloat returns a pointer to v if the decoded JSON value was a number.
func asFloat(v any) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}

// Timestamp carries both the raw JSON token of the alert timestamp (used
// verbatim in the dedup fingerprint so that textually identical submissions
// collide) and a parsed time for human-readable rendering. JSON numbers are
// interpreted as epoch milliseconds, strings as RFC 3339 or a numeric string.
type Timestamp struct {
	Raw  string
	Time time.Time
}

// UnmarshalJSON keeps the raw token and best-effort parses it. An
// unparseable token is not an error; rendering falls back to the raw form.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	tok := strings.Trim(string(b), `"`)
	if tok == "null" {
		return nil
	}
	t.Raw = tok

	if ms, err := strconv.ParseInt(tok, 10, 64); err == nil {
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, tok); err == nil {
		t.Time = parsed.UTC()
	}
	return nil
}

// MarshalJSON echoes the raw token as a JSON string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Raw)
}

// AlertRequest is the inbound payload of POST /alert.
type AlertRequest struct {
	Contacts  []Contact `json:"contacts"`
	Location  Location  `json:"location"`
	Timestamp Timestamp `json:"timestamp"`
	UserName  string    `json:"userName"`
}

// UnmarshalJSON decodes the request tolerantly: a missing, empty, or
// non-array contacts field decodes to a nil slice (reported later as a
// validation error), and location problems decode to an invalid Location.
// Only malformed JSON at the top level fails the decode.
func (r *AlertRequest) UnmarshalJSON(b []byte) error {
	var raw struct {
		Contacts  json.RawMessage `json:"contacts"`
		Location  Location        `json:"location"`
		Timestamp Timestamp       `json:"timestamp"`
		UserName  string          `json:"userName"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Location = raw.Location
	r.Timestamp = raw.Timestamp
	r.UserName = raw.UserName
	r.Contacts = nil
	if len(raw.Contacts) > 0 {
		var contacts []Contact
		if err := json.Unmarshal(raw.Contacts, &contacts); err == nil {
			r.Contacts = contacts
		}
	}
	return nil
}

// DispatchResult is the per-contact outcome of one alert dispatch. Results
// are returned in the same order as the input contacts.
type DispatchResult struct {
	Phone   string `json:"phone"`
	Name    string `json:"name"`
	Success bool   `json:"success"`
	SID     string `json:"sid,omitempty"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AlertOutcome is the aggregate response for a dispatched alert. Success is
// true whenever validation and dedup passed, even if every individual send
// failed; per-contact failures are surfaced only inside Results.
type AlertOutcome struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Results   []DispatchResult `json:"results"`
	Timestamp time.Time        `json:"timestamp"`
}
