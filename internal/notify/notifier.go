package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"casewatch/internal/components/assert"
	"casewatch/internal/components/chrono"
	"casewatch/internal/components/telemetry"
	"casewatch/internal/detect"
	"casewatch/internal/scrapers/casepage"
	"casewatch/lib/restyutil"

	"github.com/go-resty/resty/v2"
)

const (
	report_notifier_fetch_image = "notifier.fetch-image"
	report_notifier_send        = "notifier.send"
)

// NotifyError is returned when the webhook did not accept the notification.
type NotifyError struct {
	Status int
	Body   string
	Err    error
}

func (e *NotifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("send notification: %v", e.Err)
	}
	return fmt.Sprintf("send notification: unexpected status %d: %s", e.Status, e.Body)
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

type Options struct {
	// Host is prefixed to the snapshot's image reference.
	Host         string
	BoardLink    string
	MovementLink string
	WebhookURL   string
	Token        string
	Timeout      time.Duration
	Dump         restyutil.Output
}

type Notifier struct {
	opts      Options
	http      *resty.Client
	shortener Shortener
	clock     chrono.API
	tel       telemetry.API
}

func NewNotifier(opts Options, shortener Shortener, clock chrono.API, tel telemetry.API) *Notifier {
	assert.NotEmptyStr(opts.WebhookURL, "webhook url")
	assert.NotEmptyStr(opts.Token, "webhook token")
	assert.NotNil(shortener, "shortener")
	assert.NotNil(clock, "clock")
	assert.NotNil(tel, "telemetry")

	tel = telemetry.NewScopedAPI("notify", tel)

	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	telemetry.InstrumentResty(httpClient, "casewatch/notify", tel)
	restyutil.DumpMessages(httpClient, "notify", opts.Dump)

	return &Notifier{
		opts:      opts,
		http:      httpClient,
		shortener: shortener,
		clock:     clock,
		tel:       tel,
	}
}

// Prepared is a composed notification ready to be posted.
type Prepared struct {
	Message   Message
	Image     []byte
	ImageName string
}

func (p Prepared) Text() string {
	return p.Message.Text()
}

// Prepare fetches the image, resolves the links and composes the message.
// Every step degrades instead of failing.
func (n *Notifier) Prepare(ctx context.Context, snapshot casepage.Snapshot, delta detect.Delta) Prepared {
	image := n.fetchImage(ctx, snapshot.ImageRef)

	msg := Message{
		Snapshot:     snapshot,
		Delta:        delta,
		CheckedAt:    n.clock.Now().In(n.clock.Location()),
		BoardLink:    ShortenOrOriginal(ctx, n.shortener, n.opts.BoardLink, n.tel),
		MovementLink: ShortenOrOriginal(ctx, n.shortener, n.opts.MovementLink, n.tel),
	}

	imageName := path.Base(snapshot.ImageRef)
	if imageName == "." || imageName == "/" {
		imageName = "image"
	}

	return Prepared{
		Message:   msg,
		Image:     image,
		ImageName: imageName,
	}
}

func (n *Notifier) fetchImage(ctx context.Context, ref string) []byte {
	if ref == "" {
		n.tel.ReportWarning(report_notifier_fetch_image, fmt.Errorf("snapshot has no image reference"))
		return nil
	}

	link := n.opts.Host + ref
	res, err := n.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		n.tel.ReportWarning(report_notifier_fetch_image, err, link)
		return nil
	}
	if res.StatusCode() != http.StatusOK {
		n.tel.ReportWarning(
			report_notifier_fetch_image,
			fmt.Errorf("unexpected status %d", res.StatusCode()),
			link,
		)
		return nil
	}
	return res.Body()
}

// Send posts a prepared notification to the webhook.
func (n *Notifier) Send(ctx context.Context, prepared Prepared) error {
	req := n.http.R().
		SetContext(ctx).
		SetAuthToken(n.opts.Token).
		SetMultipartFormData(map[string]string{
			"message": prepared.Text(),
		})
	if len(prepared.Image) > 0 {
		req.SetFileReader("imageFile", prepared.ImageName, bytes.NewReader(prepared.Image))
	}

	res, err := req.Post(n.opts.WebhookURL)
	if err != nil {
		notifyErr := &NotifyError{Err: err}
		n.tel.ReportBroken(report_notifier_send, notifyErr)
		return notifyErr
	}
	if res.StatusCode() != http.StatusOK {
		notifyErr := &NotifyError{Status: res.StatusCode(), Body: res.String()}
		n.tel.ReportBroken(report_notifier_send, notifyErr)
		return notifyErr
	}

	n.tel.ReportDebug("notification sent", res.Status())
	return nil
}
