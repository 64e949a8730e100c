package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"casewatch/internal/components/assert"
	"casewatch/internal/components/telemetry"
	"casewatch/lib/restyutil"

	"github.com/go-resty/resty/v2"
)

const (
	report_shortener_shorten = "shortener.shorten"
)

type Shortener interface {
	Shorten(ctx context.Context, long string) (string, error)
}

// Passthrough returns every url unchanged.
type Passthrough struct{}

func (Passthrough) Shorten(_ context.Context, long string) (string, error) {
	return long, nil
}

type NaverOptions struct {
	URL          string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	Dump         restyutil.Output
}

// NaverShortener calls the Naver short-url API.
type NaverShortener struct {
	url  string
	http *resty.Client
}

func NewNaverShortener(opts NaverOptions, tel telemetry.API) NaverShortener {
	assert.NotEmptyStr(opts.URL, "shortener url")
	assert.NotNil(tel, "telemetry")

	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("X-Naver-Client-Id", opts.ClientID)
	httpClient.SetHeader("X-Naver-Client-Secret", opts.ClientSecret)
	telemetry.InstrumentResty(httpClient, "casewatch/shortener", telemetry.NewScopedAPI("shortener", tel))
	restyutil.DumpMessages(httpClient, "shortener", opts.Dump)

	return NaverShortener{
		url:  opts.URL,
		http: httpClient,
	}
}

type naverResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Result  struct {
		Url string `json:"url"`
	} `json:"result"`
}

func (s NaverShortener) Shorten(ctx context.Context, long string) (string, error) {
	res, err := s.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"url": long}).
		Post(s.url)
	if err != nil {
		return "", err
	}
	if res.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("shortener returned status %d: %s", res.StatusCode(), res.String())
	}

	var body naverResponse
	err = json.Unmarshal(res.Body(), &body)
	if err != nil {
		return "", fmt.Errorf("parse shortener response: %w", err)
	}
	if body.Code != "200" {
		return "", fmt.Errorf("shortener returned code %s: %s", body.Code, body.Message)
	}
	if body.Result.Url == "" {
		return "", fmt.Errorf("shortener returned an empty url")
	}
	return body.Result.Url, nil
}

// ShortenOrOriginal returns the shortened url, or long itself if shortening
// failed for any reason.
func ShortenOrOriginal(ctx context.Context, shortener Shortener, long string, tel telemetry.API) string {
	short, err := shortener.Shorten(ctx, long)
	if err != nil {
		tel.ReportWarning(report_shortener_shorten, err, long)
		return long
	}
	return short
}
