package geolocation

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-api/internal/domain/apperror"
)

// UndefinedCountry is the body the lookup service returns when it cannot place an address.
const UndefinedCountry = "Undefined"

// Placeholders accepted in the lookup URL template.
const (
	IPPlaceholder       = "{ip}"
	legacyIPPlaceholder = "{0}"
)

// Options configures a Gate.
type Options struct {
	URLTemplate    string // e.g. https://ipapi.co/{ip}/country
	AllowedCountry string // ISO 3166-1 alpha-2, compared case-sensitively
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Gate resolves caller addresses to a country code through an HTTP lookup
// and lets through only the allowed country.
type Gate struct {
	Client         *http.Client
	URLTemplate    string
	AllowedCountry string
	Logger         *logrus.Logger
}

func NewGate(opts Options, logger *logrus.Logger) *Gate {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Gate{
		Client:         NewHTTPClient(opts.ConnectTimeout, opts.ReadTimeout),
		URLTemplate:    opts.URLTemplate,
		AllowedCountry: opts.AllowedCountry,
		Logger:         logger,
	}
}

// NewHTTPClient bounds the dial by connectTimeout and the wait for response
// headers by readTimeout. Zero values fall back to 2s and 3s.
func NewHTTPClient(connectTimeout, readTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	if readTimeout <= 0 {
		readTimeout = 3 * time.Second
	}
	return &http.Client{
		Timeout: connectTimeout + readTimeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: connectTimeout}).DialContext,
			TLSHandshakeTimeout:   connectTimeout,
			ResponseHeaderTimeout: readTimeout,
			MaxIdleConnsPerHost:   10,
		},
	}
}

// LookupURL substitutes ip into template.
func LookupURL(template, ip string) string {
	escaped := url.PathEscape(strings.TrimSpace(ip))
	out := strings.ReplaceAll(template, IPPlaceholder, escaped)
	return strings.ReplaceAll(out, legacyIPPlaceholder, escaped)
}

// IsAuthorized reports whether ip resolves to the allowed country.
func (g *Gate) IsAuthorized(ctx context.Context, ip string) (bool, error) {
	country, err := g.CountryCode(ctx, ip)
	if err != nil {
		return false, err
	}
	allowed := country == g.AllowedCountry
	g.Logger.WithFields(logrus.Fields{"ip": ip, "country": country, "allowed": allowed}).Debug("location check")
	return allowed, nil
}

// CountryCode performs a single lookup for ip. Any failure, including the
// lookup answering UndefinedCountry, is reported as ErrLocationUnresolvable.
func (g *Gate) CountryCode(ctx context.Context, ip string) (string, error) {
	target := LookupURL(g.URLTemplate, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", unresolvable(ip, err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := g.Client.Do(req)
	if err != nil {
		g.Logger.WithError(err).WithField("ip", ip).Info("location lookup request failed")
		return "", unresolvable(ip, err)
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", unresolvable(ip, err)
	}
	body := strings.TrimSpace(string(b))

	if resp.StatusCode != http.StatusOK || body == "" || strings.EqualFold(body, UndefinedCountry) {
		g.Logger.WithFields(logrus.Fields{
			"ip":     ip,
			"status": resp.StatusCode,
			"body":   body,
		}).Info("could not compute location when calling external location service")
		return "", unresolvable(ip, nil)
	}
	return body, nil
}

func unresolvable(ip string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w for ip [%s]: %v", apperror.ErrLocationUnresolvable, ip, cause)
	}
	return fmt.Errorf("%w for ip [%s]", apperror.ErrLocationUnresolvable, ip)
}
