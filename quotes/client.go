package quotes

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ozgurk/folio"
)

const defaultTimeout = 10 * time.Second

// Client resolves prices and FX rates from an EOD-history style HTTP API.
// It implements folio.Oracle. Responses are cached on disk for the day.
type Client struct {
	base    string
	token   string
	http    *http.Client
	log     *logrus.Logger
	timeout time.Duration
}

// NewClient builds a quote client for the given API base URL and token.
func NewClient(baseURL, token string, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		base:    baseURL,
		token:   token,
		http:    daily(),
		log:     log,
		timeout: defaultTimeout,
	}
}

// get fetches addr and extracts the value at path from the JSON response.
func (c *Client) get(ctx context.Context, addr, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return 0, err
	}
	var jobj any
	if err := jwget(c.http, req, &jobj); err != nil {
		return 0, err
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return 0, fmt.Errorf("error parsing quote response: %q %w", path, err)
	}
	// jsonpath is never clear about whether it returns a list of one answer
	// or a single answer; keep the first one if any.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return 0, fmt.Errorf("empty quote response at %q", path)
		}
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("quote at %q is not a number: %v", path, jval)
	}
	return val, nil
}

// quote resolves a symbol's closing value, live when on is zero, otherwise
// the last candle at or before the date.
func (c *Client) quote(ctx context.Context, symbol string, on folio.Date) (float64, error) {
	q := url.Values{}
	q.Set("api_token", c.token)
	q.Set("fmt", "json")

	if on.IsZero() {
		addr := fmt.Sprintf("%s/real-time/%s?%s", c.base, url.PathEscape(symbol), q.Encode())
		return c.get(ctx, addr, "$.close")
	}

	// Ask for a small trailing window so weekends and holidays still yield
	// the last trading day's close.
	q.Set("from", on.Add(-7).String())
	q.Set("to", on.String())
	addr := fmt.Sprintf("%s/eod/%s?%s", c.base, url.PathEscape(symbol), q.Encode())
	return c.get(ctx, addr, "$[-1:].close")
}

// Price implements folio.Oracle. The returned Money carries no currency: the
// valuation engine re-denominates it in the asset's own currency.
func (c *Client) Price(ctx context.Context, symbol string, on folio.Date) (folio.Money, error) {
	val, err := c.quote(ctx, symbol, on)
	if err != nil {
		c.log.WithError(err).WithField("symbol", symbol).Warn("price lookup failed")
		return folio.Money{}, err
	}
	return folio.M(val, ""), nil
}

// Rate implements folio.Oracle by quoting the FX pair as a synthetic symbol,
// e.g. USDTRY.FOREX for the value of 1 USD in TRY.
func (c *Client) Rate(ctx context.Context, from, to string, on folio.Date) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	val, err := c.quote(ctx, from+to+".FOREX", on)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{"from": from, "to": to}).Warn("rate lookup failed")
		return decimal.Decimal{}, err
	}
	return decimal.NewFromFloat(val), nil
}

var _ folio.Oracle = (*Client)(nil)
