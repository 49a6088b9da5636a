package pix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
)

const (
	defaultProdBaseURL          = "https://api.novaerapay.com.br/v1"
	defaultSandboxBaseURL       = "https://sandbox.api.novaerapay.com.br/v1"
	requestBodyReadLimit  int64 = 1024
)

var errAPIKeyRequired = errors.New("pix api key is required")

// Client wraps the PIX gateway's charge API. All amounts cross the wire in
// reais with two decimal places; the rest of the codebase works in cents.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the gateway base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the PIX gateway client for the given environment.
func NewClient(apiKey, environment string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	baseURL := defaultSandboxBaseURL
	if strings.EqualFold(environment, "production") {
		baseURL = defaultProdBaseURL
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultSandboxBaseURL
	}

	return client, nil
}

// ChargeRequest describes a new PIX charge.
type ChargeRequest struct {
	AmountCents   int
	PayerName     string
	PayerEmail    string
	PayerDocument string
	ExpiresIn     time.Duration
	CallbackURL   string
}

// Charge is the normalized gateway response for a PIX charge.
type Charge struct {
	TransactionID string
	Status        enums.PaymentStatus
	QRCodeBase64  string
	CopyPasteCode string
	PaidAt        *time.Time
}

// CreateCharge registers a charge with the gateway and returns the QR code
// plus copy-paste payload the buyer needs to pay.
func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pix client not configured")
	}
	if req.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}
	if strings.TrimSpace(req.PayerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payer name is required")
	}

	body := map[string]any{
		"valor": decimal.NewFromInt(int64(req.AmountCents)).Div(decimal.NewFromInt(100)).StringFixed(2),
		"pagador": map[string]string{
			"nome":      strings.TrimSpace(req.PayerName),
			"email":     strings.TrimSpace(req.PayerEmail),
			"documento": strings.TrimSpace(req.PayerDocument),
		},
	}
	if req.ExpiresIn > 0 {
		body["expiracao_segundos"] = int(req.ExpiresIn.Seconds())
	}
	if strings.TrimSpace(req.CallbackURL) != "" {
		body["webhook_url"] = strings.TrimSpace(req.CallbackURL)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal charge request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("cobrancas"), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build charge request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute charge request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "charge request failed")
	}

	var apiResp chargePayload
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode charge response")
	}

	return apiResp.toCharge()
}

// GetCharge queries the current status of an existing charge.
func (c *Client) GetCharge(ctx context.Context, transactionID string) (*Charge, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pix client not configured")
	}
	trimmed := strings.TrimSpace(transactionID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}

	endpoint := fmt.Sprintf("%s/cobrancas/%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build charge lookup request")
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute charge lookup request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pix transaction not found at gateway")
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "charge lookup failed")
	}

	var apiResp chargePayload
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode charge lookup response")
	}

	return apiResp.toCharge()
}

type chargePayload struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	QRCodeBase64  string     `json:"qr_code_base64"`
	CopyPasteCode string     `json:"copia_e_cola"`
	PaidAt        *time.Time `json:"pago_em"`
}

func (p chargePayload) toCharge() (*Charge, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway response missing transaction id")
	}
	status, err := enums.ParsePaymentStatus(p.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway returned unknown status")
	}
	return &Charge{
		TransactionID: p.ID,
		Status:        status,
		QRCodeBase64:  p.QRCodeBase64,
		CopyPasteCode: p.CopyPasteCode,
		PaidAt:        p.PaidAt,
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

func (c *Client) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), strings.TrimLeft(path, "/"))
}
