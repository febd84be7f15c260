// Package bet365 is the client for the odds and results provider API.
package bet365

import (
	"encoding/json"
	"strconv"
	"time"
)

// apiResponse is the provider envelope. success is 1 on a good call
// even when results is empty.
type apiResponse struct {
	Success int             `json:"success"`
	Results json.RawMessage `json:"results"`
}

// UpcomingEvent is one fixture from the upcoming feed
type UpcomingEvent struct {
	ID     string `json:"id"`
	Time   string `json:"time"`
	League struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Home struct {
		Name string `json:"name"`
	} `json:"home"`
	Away struct {
		Name string `json:"name"`
	} `json:"away"`
}

// StartTime parses the provider's unix-seconds timestamp. The zero
// time is returned when the field is absent or malformed.
func (e *UpcomingEvent) StartTime() time.Time {
	secs, err := strconv.ParseInt(e.Time, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// ResultPayload is one finished event from the result endpoint.
// PeriodStats maps map number -> stat name -> [home, away] values as
// strings; values may carry a "k" suffix. Either field may be missing
// on events the provider has not graded yet.
type ResultPayload struct {
	ID     string `json:"id"`
	Time   string `json:"time"`
	SS     string `json:"ss"`
	League struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Home struct {
		Name string `json:"name"`
	} `json:"home"`
	Away struct {
		Name string `json:"name"`
	} `json:"away"`
	PeriodStats map[string]map[string][]string `json:"period_stats"`
}

// EndTime parses the provider's unix-seconds timestamp.
func (r *ResultPayload) EndTime() time.Time {
	secs, err := strconv.ParseInt(r.Time, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// MarketOdds is one flattened quote from the prematch feed
type MarketOdds struct {
	Market    string
	Selection string
	Line      float64
	Odds      float64
}

// prematch decoding: the feed nests markets under main.sp and
// others[].sp, each a named group with an odds array.
type prematchResponse struct {
	Main   prematchSection   `json:"main"`
	Others []prematchSection `json:"others"`
}

type prematchSection struct {
	Sp map[string]json.RawMessage `json:"sp"`
}

type spMarket struct {
	Name string  `json:"name"`
	Odds []spOdd `json:"odds"`
}

type spOdd struct {
	Name     string `json:"name"`
	Odds     string `json:"odds"`
	Handicap string `json:"handicap"`
	Header   string `json:"header"`
}
