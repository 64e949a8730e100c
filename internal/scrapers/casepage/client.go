package casepage

import (
	"context"
	"net/http"
	"time"

	"casewatch/internal/components/assert"
	"casewatch/internal/components/telemetry"
	"casewatch/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_fetch   = "client.fetch"
	report_client_extract = "client.extract"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type Options struct {
	URL              string
	UserAgent        string
	Timeout          time.Duration
	CloudflareBypass bool
	// Dump receives every request/response pair, it can be nil.
	Dump restyutil.Output
}

// Client fetches the statistics page and extracts a Snapshot from it.
type Client struct {
	url  string
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts Options, tel telemetry.API) *Client {
	assert.NotEmptyStr(opts.URL, "page url")
	assert.NotNil(tel, "telemetry")

	tel = telemetry.NewScopedAPI("casepage", tel)

	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	httpClient := resty.New()
	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetTimeout(opts.Timeout)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	telemetry.InstrumentResty(httpClient, "casewatch/casepage", tel)
	restyutil.DumpMessages(httpClient, "page", opts.Dump)

	return &Client{
		url:  opts.URL,
		http: httpClient,
		tel:  tel,
	}
}

// FetchPage returns the raw markup of the page.
func (c *Client) FetchPage(ctx context.Context) (string, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(c.url)
	if err != nil {
		fetchErr := &FetchError{URL: c.url, Err: err}
		c.tel.ReportBroken(report_client_fetch, fetchErr)
		return "", fetchErr
	}
	if res.StatusCode() != http.StatusOK {
		fetchErr := &FetchError{URL: c.url, Status: res.StatusCode()}
		c.tel.ReportBroken(report_client_fetch, fetchErr)
		return "", fetchErr
	}

	c.tel.ReportDebug("crawled page", res.Request.URL)
	return res.String(), nil
}

// Fetch retrieves the page and extracts the current Snapshot.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	markup, err := c.FetchPage(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snapshot, err := Extract(markup, c.tel)
	if err != nil {
		c.tel.ReportBroken(report_client_extract, err)
		return Snapshot{}, err
	}
	return snapshot, nil
}
