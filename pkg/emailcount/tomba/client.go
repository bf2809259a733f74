// Package tomba provides an emailcount.Counter implementation backed by the
// Tomba.io REST API.
package tomba

import (
	"bytes"
	"context"
	"emailcount/pkg/domain"
	"emailcount/pkg/emailcount"
	"emailcount/pkg/serrors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// DefaultBaseURL is the public Tomba API endpoint.
const DefaultBaseURL = "https://api.tomba.io"

// Client talks to the Tomba API and fulfills the emailcount.Counter interface.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client // httpClient performs HTTP requests to Tomba
	baseURL    string       // baseURL has no trailing slash
	key        string       // key is sent as X-Tomba-Key
	secret     string       // secret is sent as X-Tomba-Secret
}

// CountEmails fetches the email count of domainName.
// A response without a data object yields an empty Result and no error.
func (c *Client) CountEmails(ctx context.Context, domainName string) (emailcount.Result, error) {
	// https://docs.tomba.io/api/finder#email-count
	q := url.Values{}
	q.Set("domain", domainName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/email-count?"+q.Encode(), nil)
	if err != nil {
		return emailcount.Result{}, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Tomba-Key", c.key)
	req.Header.Set("X-Tomba-Secret", c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return emailcount.Result{}, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return emailcount.Result{}, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return emailcount.Result{}, responseError(resp.StatusCode, b)
	}

	data, err := decodeData(b)
	if err != nil {
		return emailcount.Result{}, fmt.Errorf("could not decode response: %w", err)
	}

	return emailcount.Result{Data: data}, nil
}

// decodeData extracts the "data" member of a successful response.
func decodeData(b []byte) (domain.Payload, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}

	var data domain.Payload
	if err := jx.DecodeBytes(b).ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) != "data" {
			return d.Skip()
		}
		if d.Next() == jx.Null {
			data = nil

			return d.Null()
		}

		p, err := domain.DecodePayload(d)
		if err != nil {
			return errors.Wrap(err, "decode data")
		}
		data = p

		return nil
	}); err != nil {
		return nil, err
	}

	return data, nil
}

// responseError maps a non-2xx response onto a semantic error whose message is
// the one reported by the API.
func responseError(status int, body []byte) error {
	msg := apiMessage(body)
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", status)
	}

	var kind serrors.Kind
	switch {
	case status == http.StatusUnauthorized:
		kind = serrors.ErrUnauthorized
	case status == http.StatusForbidden:
		kind = serrors.ErrForbidden
	case status == http.StatusNotFound:
		kind = serrors.ErrNotFound
	case status == http.StatusTooManyRequests:
		kind = serrors.ErrRateLimited
	case status >= http.StatusInternalServerError:
		kind = serrors.ErrUnavailable
	default:
		kind = serrors.ErrBadRequest
	}

	return serrors.With(kind, "%s", msg)
}

// apiMessage returns errors.message or message from an error body, or "" when
// the body is not a JSON object carrying either.
func apiMessage(body []byte) string {
	var top, nested string
	err := jx.DecodeBytes(body).ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "message":
			if d.Next() != jx.String {
				return d.Skip()
			}
			s, err := d.Str()
			top = s

			return err
		case "errors":
			if d.Next() != jx.Object {
				return d.Skip()
			}

			return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
				if string(key) != "message" || d.Next() != jx.String {
					return d.Skip()
				}
				s, err := d.Str()
				nested = s

				return err
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return ""
	}

	if nested = strings.TrimSpace(nested); nested != "" {
		return nested
	}

	return strings.TrimSpace(top)
}

// Ensure Client conforms to the emailcount.Counter interface at compile time.
var _ emailcount.Counter = (*Client)(nil)

// New constructs a Client that uses the provided http.Client and credentials
// to interact with the Tomba API at baseURL (DefaultBaseURL when empty).
func New(httpClient *http.Client, baseURL, key, secret string) (*Client, error) {
	if strings.TrimSpace(key) == "" || strings.TrimSpace(secret) == "" {
		return nil, serrors.With(serrors.ErrUnauthorized, "Tomba API key and secret are required")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
		secret:     secret,
	}, nil
}
