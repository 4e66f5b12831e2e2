// Package source resolves dataset locations to readers. A location is either a
// local path (optionally written as a file:// url) or an http(s) url.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/erikbern/conversion/internal/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("conversion.internal.source")

const (
	report_fetch = "fetch"
)

var ErrUnsupportedScheme = errors.New("unsupported location scheme")

const DefaultUserAgent = "conversion/1.0 (+https://github.com/erikbern/conversion)"

type Options struct {
	// RatePerSecond limits outgoing requests, 0 means unlimited.
	RatePerSecond float64
	Timeout       time.Duration
	UserAgent     string
}

type Opener struct {
	client *resty.Client
	tel    telemetry.API
}

func NewOpener(opts Options, tel telemetry.API) Opener {
	tel = telemetry.NewScopedAPI("source", tel)

	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)

	if opts.RatePerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}
	telemetry.InstrumentResty(client, tel)

	return Opener{client: client, tel: tel}
}

// Open returns the contents at location, the caller must close the reader.
func (o Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	ctx, span := tracer.Start(ctx, "Open")
	defer span.End()
	span.SetAttributes(attribute.String("location", location))

	u, err := url.Parse(location)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid location")
		return nil, fmt.Errorf("parse location: %w", err)
	}

	switch u.Scheme {
	case "":
		return os.Open(location)
	case "file":
		path := u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = u.Host + u.Path
		}
		return os.Open(path)
	case "http", "https":
		body, err := o.fetch(ctx, location)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fetch failed")
			return nil, err
		}
		span.SetAttributes(attribute.Int("bytes", len(body)))
		return io.NopCloser(bytes.NewReader(body)), nil
	default:
		err := fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unsupported scheme")
		return nil, err
	}
}

func (o Opener) fetch(ctx context.Context, location string) ([]byte, error) {
	res, err := o.client.R().
		SetContext(ctx).
		Get(location)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}
	if res.IsError() || res.StatusCode() >= 300 {
		o.tel.ReportWarning(report_fetch, location, res.Status())
		return nil, fmt.Errorf("fetch %s: unexpected status %s", location, res.Status())
	}
	return res.Body(), nil
}
