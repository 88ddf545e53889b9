package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/legendiguess/coinbase-dca-bot/domain"
)

type exchangeCredentials interface {
	GetAPIKey() string
	GetAPISecret() string
	GetAPIPassphrase() string
	GetHTTPUrl() string
}

// Exchange is the authenticated venue REST client.
type Exchange struct {
	credentials exchangeCredentials
	client      *http.Client
}

func NewExchange(exchangeCredentials exchangeCredentials) *Exchange {
	return &Exchange{credentials: exchangeCredentials, client: http.DefaultClient}
}

// GenerateSignature builds the CB-ACCESS-SIGN header value: a base64 HMAC
// SHA-256 over timestamp+method+path+body, keyed with the base64-decoded API
// secret.
func (exchange *Exchange) GenerateSignature(timestamp string, method string, path string, body string) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(exchange.credentials.GetAPISecret())
	if err != nil {
		return "", fmt.Errorf("decode API secret (did you set your API secrets?): %w", err)
	}

	h := hmac.New(sha256.New, secret)
	h.Write([]byte(timestamp + method + path + body))

	return base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

func (exchange *Exchange) sendRequest(method string, path string, body string, answer interface{}) error {
	newRequest, err := http.NewRequest(method, exchange.credentials.GetHTTPUrl()+path, bytes.NewReader([]byte(body)))
	if err != nil {
		return err
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature, err := exchange.GenerateSignature(timestamp, method, path, body)
	if err != nil {
		return err
	}

	newRequest.Header.Set("CB-ACCESS-KEY", exchange.credentials.GetAPIKey())
	newRequest.Header.Set("CB-ACCESS-SIGN", signature)
	newRequest.Header.Set("CB-ACCESS-TIMESTAMP", timestamp)
	newRequest.Header.Set("CB-ACCESS-PASSPHRASE", exchange.credentials.GetAPIPassphrase())
	newRequest.Header.Set("Content-Type", "application/json")

	resp, err := exchange.client.Do(newRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bytesAnswer, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	// A response carrying a "message" field is the venue's error envelope.
	var envelope domain.VenueError
	if json.Unmarshal(bytesAnswer, &envelope) == nil && envelope.Message != "" {
		return &envelope
	}

	if err := json.Unmarshal(bytesAnswer, answer); err != nil {
		return fmt.Errorf("decode %s %s answer: %w", method, path, err)
	}
	return nil
}

// GetProduct fetches the market metadata for one trading pair.
func (exchange *Exchange) GetProduct(id string) (domain.Market, error) {
	var market domain.Market
	err := exchange.sendRequest("GET", "/products/"+id, "", &market)
	return market, err
}

// ListProducts fetches every market the venue offers.
func (exchange *Exchange) ListProducts() ([]domain.Market, error) {
	var markets []domain.Market
	err := exchange.sendRequest("GET", "/products", "", &markets)
	return markets, err
}

// PlaceOrder submits the order request and returns the venue's immediate
// order record. A *domain.VenueError return means the venue refused the
// submission.
func (exchange *Exchange) PlaceOrder(request domain.OrderRequest) (domain.Order, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return domain.Order{}, err
	}

	var order domain.Order
	err = exchange.sendRequest("POST", "/orders", string(body), &order)
	return order, err
}

// GetOrder fetches an order by its venue-assigned identifier. A NotFound
// *domain.VenueError usually means the order was cancelled externally.
func (exchange *Exchange) GetOrder(id string) (domain.Order, error) {
	var order domain.Order
	err := exchange.sendRequest("GET", "/orders/"+id, "", &order)
	return order, err
}
