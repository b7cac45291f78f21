package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nextfunnel-checkout/internal/config"
)

type PaypalClient interface {
	CreateOrder(ctx context.Context, params CreateOrderParams) (*CreateOrderResponse, error)
	GetOrder(ctx context.Context, orderID string) (*PaypalOrderResult, error)
	CaptureOrder(ctx context.Context, orderID string) (*PaypalOrderResult, error)
}

type paypalClientImpl struct {
	httpClient         *http.Client
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
}

type CreateOrderParams struct {
	Amount    string // decimal string, 2 fractional digits
	Currency  string
	ReturnURL string
	CancelURL string
	CustomID  string // plan id carried through as provider metadata
}

type CreateOrderResponse struct {
	OrderID    string
	ApproveURL string
}

type PaypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type PaypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type PaypalCapture struct {
	ID     string        `json:"id"`
	Status string        `json:"status"`
	Amount *PaypalAmount `json:"amount"`
}

type PaypalPayments struct {
	Captures []PaypalCapture `json:"captures"`
}

type PaypalPurchaseUnit struct {
	CustomID string          `json:"custom_id"`
	Amount   *PaypalAmount   `json:"amount"`
	Payments *PaypalPayments `json:"payments"`
}

type PaypalPayerName struct {
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
}

type PaypalPayer struct {
	Name    *PaypalPayerName `json:"name"`
	Email   string           `json:"email_address"`
	PayerID string           `json:"payer_id"`
}

// PaypalOrderResult is the raw provider order shape shared by the order
// lookup and capture endpoints. Field presence varies between the two, which
// is why everything nested is optional.
type PaypalOrderResult struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	Links         []PaypalLink         `json:"links"`
	PurchaseUnits []PaypalPurchaseUnit `json:"purchase_units"`
	Payer         *PaypalPayer         `json:"payer"`
}

// PaypalAPIError carries the provider error body verbatim so callers can
// surface it and inspect provider issue codes.
type PaypalAPIError struct {
	StatusCode int
	Body       string
}

func (e *PaypalAPIError) Error() string {
	return fmt.Sprintf("paypal error %d: %s", e.StatusCode, e.Body)
}

func NewPaypalClient(paypalCfg *config.Paypal) PaypalClient {
	return &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:         paypalCfg.BaseApiURL,
		paypalClientID:     paypalCfg.ClientID,
		paypalClientSecret: paypalCfg.ClientSecret,
	}
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.paypalClientID + ":" + c.paypalClientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", &PaypalAPIError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("paypal token response missing access_token")
	}

	return res.AccessToken, nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, params CreateOrderParams) (*CreateOrderResponse, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	unit := map[string]interface{}{
		"amount": map[string]string{
			"currency_code": params.Currency,
			"value":         params.Amount,
		},
	}
	if params.CustomID != "" {
		unit["custom_id"] = params.CustomID
		unit["description"] = "Purchase: " + params.CustomID
	}

	payload := map[string]interface{}{
		"intent":         "CAPTURE",
		"purchase_units": []map[string]interface{}{unit},
		"application_context": map[string]string{
			"return_url": params.ReturnURL,
			"cancel_url": params.CancelURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v2/checkout/orders",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal create order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, &PaypalAPIError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var result PaypalOrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode paypal response: %w", err)
	}

	return &CreateOrderResponse{
		OrderID:    result.ID,
		ApproveURL: extractApproveURL(result.Links),
	}, nil
}

func (c *paypalClientImpl) GetOrder(ctx context.Context, orderID string) (*PaypalOrderResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	url := fmt.Sprintf("%s/v2/checkout/orders/%s", c.baseApiURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create order lookup request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal order lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, &PaypalAPIError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var result PaypalOrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode paypal response: %w", err)
	}

	return &result, nil
}

func (c *paypalClientImpl) CaptureOrder(ctx context.Context, orderID string) (*PaypalOrderResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	url := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", c.baseApiURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create capture request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal capture request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &PaypalAPIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result PaypalOrderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode capture response: %w", err)
	}

	return &result, nil
}

func extractApproveURL(links []PaypalLink) string {
	for _, link := range links {
		if link.Rel == "approve" {
			return link.Href
		}
	}
	return ""
}
