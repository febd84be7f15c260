package bet365

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/evaristomat/lol-v2/internal/datasource"
	"github.com/evaristomat/lol-v2/internal/metrics"
)

// lolSportID is the provider's sport id for League of Legends.
const lolSportID = "151"

// Client calls the provider API through the shared rate-limited
// transport. One client (and one quota window) is shared by every
// caller in the process.
type Client struct {
	http    *datasource.RateLimitedHTTPClient
	baseURL string
	token   string
	log     logrus.FieldLogger
}

// NewClient creates a provider client
func NewClient(httpClient *datasource.RateLimitedHTTPClient, baseURL, token string, log logrus.FieldLogger) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		log:     log,
	}
}

// Upcoming lists upcoming fixtures, optionally filtered to one league.
func (c *Client) Upcoming(ctx context.Context, leagueID string) ([]UpcomingEvent, error) {
	params := url.Values{"sport_id": {lolSportID}}
	if leagueID != "" {
		params.Set("league_id", leagueID)
	}

	raw, err := c.get(ctx, "/v1/bet365/upcoming", params)
	if err != nil {
		return nil, err
	}
	metrics.ProviderRequests.WithLabelValues("upcoming").Inc()

	var events []UpcomingEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("failed to decode upcoming events: %w", err)
	}
	return events, nil
}

// Result fetches the graded result for one event. A success envelope
// with an empty results array means the event is not graded yet and
// maps to (nil, nil).
func (c *Client) Result(ctx context.Context, eventID string) (*ResultPayload, error) {
	raw, err := c.get(ctx, "/v1/bet365/result", url.Values{"event_id": {eventID}})
	if err != nil {
		return nil, err
	}
	metrics.ProviderRequests.WithLabelValues("result").Inc()

	var results []ResultPayload
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// Prematch fetches and flattens the quoted markets for one event.
func (c *Client) Prematch(ctx context.Context, eventID string) ([]MarketOdds, error) {
	raw, err := c.get(ctx, "/v3/bet365/prematch", url.Values{"FI": {eventID}})
	if err != nil {
		return nil, err
	}
	metrics.ProviderRequests.WithLabelValues("prematch").Inc()

	var sections []prematchResponse
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, fmt.Errorf("failed to decode prematch odds: %w", err)
	}

	var odds []MarketOdds
	for _, section := range sections {
		odds = append(odds, c.flattenSection(section.Main)...)
		for _, other := range section.Others {
			odds = append(odds, c.flattenSection(other)...)
		}
	}
	return odds, nil
}

// flattenSection turns one sp group into flat quotes, dropping entries
// it cannot read. A single malformed quote is not worth failing the
// whole event.
func (c *Client) flattenSection(section prematchSection) []MarketOdds {
	var out []MarketOdds
	for _, rawMarket := range section.Sp {
		var market spMarket
		if err := json.Unmarshal(rawMarket, &market); err != nil {
			continue
		}
		for _, odd := range market.Odds {
			price, err := strconv.ParseFloat(odd.Odds, 64)
			if err != nil || price <= 1 {
				continue
			}
			line, _ := strconv.ParseFloat(strings.TrimSpace(odd.Handicap), 64)

			selection := odd.Name
			if selection == "" {
				selection = odd.Header
			}
			out = append(out, MarketOdds{
				Market:    market.Name,
				Selection: selection,
				Line:      line,
				Odds:      price,
			})
		}
	}
	return out
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	params.Set("token", c.token)
	fullURL := c.baseURL + path + "?" + params.Encode()

	resp, err := c.http.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("provider request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider request %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("provider request %s: read body: %w", path, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("provider request %s: decode envelope: %w", path, err)
	}
	if envelope.Success != 1 {
		return nil, fmt.Errorf("provider request %s: success=%d", path, envelope.Success)
	}
	if len(envelope.Results) == 0 {
		return json.RawMessage("[]"), nil
	}
	return envelope.Results, nil
}
