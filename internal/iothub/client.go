package iothub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

const (
	apiVersion      = "2021-04-12"
	tokenLifetime   = time.Hour
	responseTimeout = 30
)

type methodRequest struct {
	MethodName               string         `json:"methodName"`
	ResponseTimeoutInSeconds int            `json:"responseTimeoutInSeconds"`
	Payload                  map[string]any `json:"payload"`
}

// MethodResponse is the device's answer to a direct method.
type MethodResponse struct {
	Status  int             `json:"status"`
	Payload json.RawMessage `json:"payload"`
}

// StatusError is returned when the hub rejects the invocation.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("iot hub responded %d: %s", e.StatusCode, e.Body)
}

// Client invokes direct methods on one device.
type Client struct {
	http     *resty.Client
	conn     ConnectionString
	deviceID string
	now      func() time.Time
}

type Option func(*Client)

// WithBaseURL points the client at another endpoint, e.g. a local emulator.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.http.SetBaseURL(u)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

func NewClient(conn ConnectionString, deviceID string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL("https://"+conn.HostName).
			SetHeader("Content-Type", "application/json").
			SetTimeout((responseTimeout + 5) * time.Second),
		conn:     conn,
		deviceID: deviceID,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InvokeMethod calls method on the device with payload and waits for its answer.
func (c *Client) InvokeMethod(ctx context.Context, method string, payload map[string]any) (*MethodResponse, error) {
	token, err := c.conn.SASToken(c.now().Add(tokenLifetime))
	if err != nil {
		return nil, err
	}

	var out MethodResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", token).
		SetPathParam("deviceId", c.deviceID).
		SetQueryParam("api-version", apiVersion).
		SetBody(methodRequest{
			MethodName:               method,
			ResponseTimeoutInSeconds: responseTimeout,
			Payload:                  payload,
		}).
		SetResult(&out).
		Post("/twins/{deviceId}/methods")
	if err != nil {
		return nil, errors.Wrapf(err, "invoke %s on %s", method, c.deviceID)
	}
	if resp.IsError() {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	return &out, nil
}
