// Package soap implements the RPC-over-HTTP client for the remote
// time-tracking services. Two logical services are consumed:
// MSIWebTraxCheckInSummary (swipe recording) and MSIWebTraxCheckIn
// (image upload), both authenticated with a UserCredentials header on
// every call.
package soap

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"tclock-go/internal/config"
	"tclock-go/internal/tclock"
)

const (
	targetNamespace = "http://msiwebtrax.com/"
	soapEnvelopeNS  = "http://schemas.xmlsoap.org/soap/envelope/"

	summaryService = "MSIWebTraxCheckInSummary.asmx"
	checkinService = "MSIWebTraxCheckIn.asmx"
)

// Client talks to both remote services. It implements
// tclock.SwipeService, tclock.ImageService, and tclock.Prober.
// Per-call deadlines come from the caller's context; the underlying
// http.Client carries no timeout of its own.
type Client struct {
	summaryURL string
	checkinURL string
	username   string
	password   string
	clientID   string
	httpClient *http.Client
	logger     tclock.Logger
}

var (
	_ tclock.SwipeService = (*Client)(nil)
	_ tclock.ImageService = (*Client)(nil)
	_ tclock.Prober       = (*Client)(nil)
)

// NewClient creates a client for the configured endpoint. The endpoint
// is the site root; service URLs are derived as
// "{endpoint}Services/<ServiceName>.asmx".
func NewClient(cfg config.SoapConfig, logger tclock.Logger) *Client {
	base := strings.TrimSuffix(cfg.Endpoint, "/") + "/Services/"
	return &Client{
		summaryURL: base + summaryService,
		checkinURL: base + checkinService,
		username:   cfg.Username,
		password:   cfg.Password,
		clientID:   strconv.Itoa(cfg.ClientID),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// RecordSwipe records a punch via RecordSwipeSummary.
func (c *Client) RecordSwipe(ctx context.Context, swipeInput string) (*tclock.SwipeResponse, error) {
	return c.recordSwipe(ctx, "RecordSwipeSummary", recordSwipeSummaryRequest{
		XMLNS:      targetNamespace,
		SwipeInput: swipeInput,
	})
}

// RecordSwipeDepartmentOverride records a punch whose swipe input
// carries a department override suffix.
func (c *Client) RecordSwipeDepartmentOverride(ctx context.Context, swipeInput string) (*tclock.SwipeResponse, error) {
	return c.recordSwipe(ctx, "RecordSwipeSummaryDepartmentOverride", recordSwipeSummaryOverrideRequest{
		XMLNS:      targetNamespace,
		SwipeInput: swipeInput,
	})
}

func (c *Client) recordSwipe(ctx context.Context, operation string, payload any) (*tclock.SwipeResponse, error) {
	respBody, err := c.call(ctx, c.summaryURL, operation, payload)
	if err != nil {
		return nil, err
	}

	var env swipeResponseEnvelope
	if err := xml.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", operation, err)
	}

	info := env.Body.Response.Result.ReturnInfo
	resp := &tclock.SwipeResponse{
		PunchSuccess: info.PunchSuccess,
		PunchType:    info.PunchType,
		FirstName:    info.FirstName,
		LastName:     info.LastName,
	}
	resp.SystemErrorCode = parseOptionalCode(info.SystemErrorCode)
	resp.PunchException = parseOptionalCode(info.PunchException)
	resp.WeeklyHours = parseOptionalHours(env.Body.Response.Result.CurrentWeeklyHours)
	return resp, nil
}

// SaveImage uploads a JPEG punch photo. dir is the tenant id the server
// files images under.
func (c *Client) SaveImage(ctx context.Context, fileName string, data []byte) error {
	payload := saveImageRequest{
		XMLNS:    targetNamespace,
		FileName: fileName,
		Data:     base64.StdEncoding.EncodeToString(data),
		Dir:      c.clientID,
	}

	respBody, err := c.call(ctx, c.checkinURL, "SaveImage", payload)
	if err != nil {
		return err
	}

	var env saveImageResponseEnvelope
	if err := xml.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("decoding SaveImage response: %w", err)
	}

	if code := parseOptionalCode(env.Result.SystemErrorCode); code != nil {
		return fmt.Errorf("SaveImage failed with system error code %d", *code)
	}
	return nil
}

// Probe verifies both services are reachable and expose the required
// operations, by fetching each service's WSDL.
func (c *Client) Probe(ctx context.Context) error {
	var missing []string

	if err := c.probeOperation(ctx, c.summaryURL, "RecordSwipeSummary", &missing); err != nil {
		return err
	}
	if err := c.probeOperation(ctx, c.checkinURL, "RecordSwipe", &missing); err != nil {
		return err
	}

	if len(missing) > 0 {
		return fmt.Errorf("required operations not found: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Client) probeOperation(ctx context.Context, serviceURL, operation string, missing *[]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serviceURL+"?WSDL", nil)
	if err != nil {
		return fmt.Errorf("building WSDL request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching WSDL from %s: %w", serviceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching WSDL from %s: status %d", serviceURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading WSDL from %s: %w", serviceURL, err)
	}

	if !strings.Contains(string(body), operation) {
		*missing = append(*missing, operation)
	}
	return nil
}

// call posts a SOAP 1.1 envelope with the credentials header and
// returns the raw response body.
func (c *Client) call(ctx context.Context, serviceURL, operation string, payload any) ([]byte, error) {
	env := requestEnvelope{
		XMLNSSoap: soapEnvelopeNS,
		Header: requestHeader{
			Credentials: userCredentials{
				XMLNS:    targetNamespace,
				UserName: c.username,
				PWD:      c.password,
			},
		},
		Body: requestBody{Payload: payload},
	}

	data, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serviceURL,
		bytes.NewReader(append([]byte(xml.Header), data...)))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", targetNamespace+operation)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", operation, err)
	}

	// SOAP faults arrive with a 500 status. They funnel into the same
	// error path as transport failures: the caller treats both as a
	// connectivity failure and falls back to the offline queue.
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d: %s", operation, resp.StatusCode, summarize(body))
	}
	return body, nil
}

// summarize trims a response body for error messages.
func summarize(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// parseOptionalCode converts an optional numeric element into a code.
// Absent, empty, and zero values all mean "no code", matching the
// remote service's habit of sending empty elements.
func parseOptionalCode(raw *string) *int {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	code, err := strconv.Atoi(s)
	if err != nil || code == 0 {
		return nil
	}
	return &code
}

func parseOptionalHours(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	hours, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &hours
}
