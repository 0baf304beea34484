package trackapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tripmgr/internal/core/ports"
	"tripmgr/internal/pkg/errs"
)

const (
	// apiVersion is the protocol version sent in every request envelope.
	apiVersion = "4.0"

	// callTimeout bounds each individual HTTP call, separate from the
	// caller's overall context deadline.
	callTimeout = 30 * time.Second

	// bulkSublotID is the split mode that creates one child unit per data
	// line in a single call.
	bulkSublotID = "bulk_create"
)

// Environment selects which mode the tracking system runs in. Training mode
// hits the same endpoint but rolls every change back on the remote side;
// selecting it is an explicit constructor argument, never ambient state.
type Environment int

const (
	// EnvironmentProduction commits changes in the live traceability system.
	EnvironmentProduction Environment = iota

	// EnvironmentTraining exercises the API without committing anything.
	EnvironmentTraining
)

// trainingFlag returns the wire form of the environment selector.
func (e Environment) trainingFlag() string {
	if e == EnvironmentTraining {
		return "1"
	}
	return "0"
}

// Credentials holds the account used to open tracking sessions.
type Credentials struct {
	Username      string
	Password      string
	LicenseNumber string
}

// Validate checks that all credential fields are present.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return errs.NewValueIsRequiredError("username")
	}
	if strings.TrimSpace(c.Password) == "" {
		return errs.NewValueIsRequiredError("password")
	}
	if strings.TrimSpace(c.LicenseNumber) == "" {
		return errs.NewValueIsRequiredError("licenseNumber")
	}
	return nil
}

// successFlag tolerates the three encodings the API uses for its success
// field: the string "1", the number 1 and the boolean true.
type successFlag bool

func (f *successFlag) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case `"1"`, `1`, `true`:
		*f = true
	default:
		*f = false
	}
	return nil
}

// responseEnvelope is the common shape of every tracking API response.
type responseEnvelope struct {
	Success   successFlag     `json:"success"`
	Error     string          `json:"error"`
	ErrorCode json.Number     `json:"errorcode"`
	SessionID string          `json:"sessionid"`
	BarcodeID json.RawMessage `json:"barcode_id"`
}

// Client talks to the external inventory tracking system over its JSON POST
// protocol. It implements ports.TrackingGateway.
//
// Transient failures (network errors, timeouts, 5xx responses) are retried
// according to the configured RetryPolicy before the error escapes. All
// other failures return immediately with a classified error type.
type Client struct {
	baseURL     string
	credentials Credentials
	environment Environment
	policy      RetryPolicy
	httpClient  *http.Client
	logger      *slog.Logger

	// sleep is replaceable in tests to avoid real backoff delays
	sleep func(ctx context.Context, d time.Duration) bool
}

var _ ports.TrackingGateway = (*Client)(nil)

// NewClient creates a tracking API client.
//
// Parameters:
//   - baseURL: Endpoint of the tracking API; required.
//   - credentials: Account used for login; all fields required.
//   - environment: Production or training mode.
//   - policy: Retry behavior for transient failures.
//   - logger: Structured logger; required.
func NewClient(
	baseURL string,
	credentials Credentials,
	environment Environment,
	policy RetryPolicy,
	logger *slog.Logger,
) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	if err := credentials.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}
	if policy.MaxAttempts < 1 {
		return nil, errs.NewValueIsInvalidError("retryPolicy")
	}

	return &Client{
		baseURL:     baseURL,
		credentials: credentials,
		environment: environment,
		policy:      policy,
		httpClient:  &http.Client{Timeout: callTimeout},
		logger:      logger.With("component", "trackapi"),
		sleep:       sleepWithContext,
	}, nil
}

// Authenticate opens a session and returns its identifier.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	payload := map[string]any{
		"API":            apiVersion,
		"action":         "login",
		"username":       c.credentials.Username,
		"password":       c.credentials.Password,
		"license_number": c.credentials.LicenseNumber,
	}

	envelope, err := c.call(ctx, "login", payload)
	if err != nil {
		var semantic *SemanticError
		if errors.As(err, &semantic) {
			return "", &AuthError{Message: semantic.Message}
		}
		return "", err
	}

	if envelope.SessionID == "" {
		return "", &ProtocolError{Op: "login", Message: "response is missing sessionid"}
	}
	return envelope.SessionID, nil
}

// SplitInventory creates child units off the given parent units in one bulk
// call. Returns the new unit identifiers, one per item, in item order.
func (c *Client) SplitInventory(ctx context.Context, sessionID string, items []ports.SplitItem) ([]string, error) {
	if len(items) == 0 {
		return nil, errs.NewValueIsRequiredError("items")
	}

	data := make([]map[string]string, 0, len(items))
	for _, item := range items {
		data = append(data, map[string]string{
			"barcodeid":       item.UnitID,
			"remove_quantity": strconv.FormatFloat(item.Quantity, 'f', 2, 64),
		})
	}

	payload := map[string]any{
		"API":       apiVersion,
		"action":    "inventory_split",
		"sessionid": sessionID,
		"sublot_id": bulkSublotID,
		"data":      data,
		"training":  c.environment.trainingFlag(),
	}

	envelope, err := c.call(ctx, "inventory_split", payload)
	if err != nil {
		return nil, err
	}

	var newIDs []string
	if err := json.Unmarshal(envelope.BarcodeID, &newIDs); err != nil {
		return nil, &ProtocolError{Op: "inventory_split", Message: "barcode_id is not a string array"}
	}
	if len(newIDs) != len(items) {
		return nil, &ProtocolError{
			Op:      "inventory_split",
			Message: fmt.Sprintf("expected %d new unit ids, got %d", len(items), len(newIDs)),
		}
	}
	return newIDs, nil
}

// MoveInventory relocates units into their rooms.
func (c *Client) MoveInventory(ctx context.Context, sessionID string, items []ports.MoveItem) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	data := make([]map[string]string, 0, len(items))
	for _, item := range items {
		data = append(data, map[string]string{
			"barcodeid": item.UnitID,
			"room":      item.Room,
		})
	}

	payload := map[string]any{
		"API":       apiVersion,
		"action":    "inventory_move",
		"sessionid": sessionID,
		"data":      data,
		"training":  c.environment.trainingFlag(),
	}

	_, err := c.call(ctx, "inventory_move", payload)
	return err
}

// RegisterManifest registers a transfer manifest for one route stop and
// returns the manifest identifier assigned by the tracking system.
func (c *Client) RegisterManifest(ctx context.Context, sessionID string, manifest ports.ManifestRequest) (string, error) {
	if len(manifest.UnitIDs) == 0 {
		return "", errs.NewValueIsRequiredError("unitIds")
	}

	stopOverview := map[string]any{
		"approximate_departure": strconv.FormatInt(manifest.Departure.Unix(), 10),
		"approximate_arrival":   strconv.FormatInt(manifest.Arrival.Unix(), 10),
		"approximate_route":     manifest.RouteText,
		"vendor_license":        manifest.VendorLicense,
		"stop_number":           strconv.Itoa(manifest.StopNumber),
		"barcodeid":             manifest.UnitIDs,
	}

	payload := map[string]any{
		"API":           apiVersion,
		"action":        "inventory_manifest",
		"sessionid":     sessionID,
		"location":      c.credentials.LicenseNumber,
		"stop_overview": stopOverview,
		"employee_id":   manifest.DriverID,
		"vehicle_id":    manifest.VehicleID,
		"training":      c.environment.trainingFlag(),
	}
	if manifest.SecondDriverID != "" {
		payload["employee_id_2"] = manifest.SecondDriverID
	}

	envelope, err := c.call(ctx, "inventory_manifest", payload)
	if err != nil {
		return "", err
	}

	manifestID, err := decodeManifestID(envelope.BarcodeID)
	if err != nil {
		return "", err
	}
	return manifestID, nil
}

// call posts one request envelope and retries transient failures according to
// the client's policy. The returned envelope always has Success set.
func (c *Client) call(ctx context.Context, action string, payload map[string]any) (*responseEnvelope, error) {
	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		envelope, err := c.post(ctx, action, payload)
		if err == nil {
			return envelope, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == c.policy.MaxAttempts || !IsTransient(err) {
			break
		}

		delay := c.policy.Delay(attempt)
		c.logger.Warn("tracking call retry",
			"action", action,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
		if !c.sleep(ctx, delay) {
			break
		}
	}
	return nil, lastErr
}

// post performs a single HTTP round trip and classifies the outcome.
func (c *Client) post(ctx context.Context, action string, payload map[string]any) (*responseEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProtocolError{Op: action, Message: fmt.Sprintf("encoding request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &ProtocolError{Op: action, Message: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Op: action, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Op: action, Err: err}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &TransientError{
			Op:  action,
			Err: fmt.Errorf("server returned status %d", resp.StatusCode),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProtocolError{
			Op:      action,
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &ProtocolError{Op: action, Message: fmt.Sprintf("decoding response: %v", err)}
	}

	if !bool(envelope.Success) {
		message := envelope.Error
		if message == "" {
			message = "unknown tracking error"
		}
		return nil, &SemanticError{Message: message, Code: envelope.ErrorCode.String()}
	}

	return &envelope, nil
}

// decodeManifestID reads the manifest identifier, which the API returns as
// either a JSON string or a bare number.
func decodeManifestID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", &ProtocolError{Op: "inventory_manifest", Message: "response is missing barcode_id"}
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil && asString != "" {
		return asString, nil
	}

	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil && asNumber.String() != "" {
		return asNumber.String(), nil
	}

	return "", &ProtocolError{Op: "inventory_manifest", Message: "barcode_id has unexpected type"}
}
