package services_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legendiguess/coinbase-dca-bot/domain"
	"github.com/legendiguess/coinbase-dca-bot/services"
)

type testExchangeCredentials struct {
	url string
}

func (credentials *testExchangeCredentials) GetAPIKey() string {
	return "test-key"
}

func (credentials *testExchangeCredentials) GetAPISecret() string {
	return "cnR0cDRBendSZllFZFE3UjdYOFowNFk0VFpQYTk3cHE="
}

func (credentials *testExchangeCredentials) GetAPIPassphrase() string {
	return "test-passphrase"
}

func (credentials *testExchangeCredentials) GetHTTPUrl() string {
	return credentials.url
}

func TestGenerateSignature(t *testing.T) {
	exchange := services.NewExchange(&testExchangeCredentials{})

	signature, err := exchange.GenerateSignature(
		"1609459200", "POST", "/orders",
		`{"type":"market","side":"buy","product_id":"BTC-USD","funds":"14.00"}`)

	assert.Nil(t, err)
	assert.Equal(t, "LblXSSDTdI0A8rh6EYt52/aSsZflqKmxqsflWT2tUlc=", signature)
}

type badSecretCredentials struct {
	testExchangeCredentials
}

func (credentials *badSecretCredentials) GetAPISecret() string {
	return "not-base64!!!"
}

func TestGenerateSignatureBadSecret(t *testing.T) {
	exchange := services.NewExchange(&badSecretCredentials{})

	_, err := exchange.GenerateSignature("0", "GET", "/products", "")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "API secret")
}

func TestGetProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/products/BTC-USD", req.URL.Path)
		assert.NotEmpty(t, req.Header.Get("CB-ACCESS-SIGN"))
		assert.Equal(t, "test-key", req.Header.Get("CB-ACCESS-KEY"))
		assert.Equal(t, "test-passphrase", req.Header.Get("CB-ACCESS-PASSPHRASE"))

		answer := `{"id":"BTC-USD","base_currency":"BTC","quote_currency":"USD","base_min_size":"0.0001","base_increment":"0.00000001","quote_increment":"0.01"}`
		_, _ = resp.Write([]byte(answer))
	}))
	defer server.Close()

	exchange := services.NewExchange(&testExchangeCredentials{url: server.URL})
	market, err := exchange.GetProduct("BTC-USD")

	assert.Nil(t, err)
	assert.Equal(t, "BTC-USD", market.ID)
	assert.Equal(t, "BTC", market.BaseCurrency)
	assert.Equal(t, "USD", market.QuoteCurrency)
	assert.Equal(t, "0.01", market.QuoteIncrement.String())
}

func TestGetProductNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		resp.WriteHeader(http.StatusNotFound)
		_, _ = resp.Write([]byte(`{"message":"NotFound"}`))
	}))
	defer server.Close()

	exchange := services.NewExchange(&testExchangeCredentials{url: server.URL})
	_, err := exchange.GetProduct("XYZ-USD")

	var venueError *domain.VenueError
	assert.True(t, errors.As(err, &venueError))
	assert.True(t, venueError.IsNotFound())
}

func TestPlaceOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "POST", req.Method)
		assert.Equal(t, "/orders", req.URL.Path)

		var request domain.OrderRequest
		assert.Nil(t, json.NewDecoder(req.Body).Decode(&request))
		assert.Equal(t, "market", request.Type)
		assert.Equal(t, "14.00", request.Funds)

		answer := `{"id":"d0c5340b-6d6c-49d9-b567-48c4bfca13d2","product_id":"BTC-USD","side":"buy","status":"pending","filled_size":"0","executed_value":"0","fill_fees":"0","settled":false,"created_at":"2021-12-08T20:02:28.53864Z"}`
		_, _ = resp.Write([]byte(answer))
	}))
	defer server.Close()

	exchange := services.NewExchange(&testExchangeCredentials{url: server.URL})
	order, err := exchange.PlaceOrder(domain.OrderRequest{
		Type: "market", Side: domain.OrderSideBuy, ProductID: "BTC-USD", Funds: "14.00",
	})

	assert.Nil(t, err)
	assert.Equal(t, "d0c5340b-6d6c-49d9-b567-48c4bfca13d2", order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestPlaceOrderErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		resp.WriteHeader(http.StatusBadRequest)
		_, _ = resp.Write([]byte(`{"message":"Insufficient funds"}`))
	}))
	defer server.Close()

	exchange := services.NewExchange(&testExchangeCredentials{url: server.URL})
	_, err := exchange.PlaceOrder(domain.OrderRequest{Type: "market", Side: domain.OrderSideBuy, ProductID: "BTC-USD", Funds: "14.00"})

	var venueError *domain.VenueError
	assert.True(t, errors.As(err, &venueError))
	assert.Equal(t, "Insufficient funds", venueError.Message)
}

func TestGetOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/orders/d0c5340b", req.URL.Path)

		answer := `{"id":"d0c5340b","product_id":"BTC-USD","side":"buy","status":"done","done_reason":"filled","filled_size":"0.00028000","executed_value":"13.9300000000000000","fill_fees":"0.0696500000000000","settled":true,"created_at":"2021-12-08T20:02:28.53864Z"}`
		_, _ = resp.Write([]byte(answer))
	}))
	defer server.Close()

	exchange := services.NewExchange(&testExchangeCredentials{url: server.URL})
	order, err := exchange.GetOrder("d0c5340b")

	assert.Nil(t, err)
	assert.Equal(t, domain.OrderStatusDone, order.Status)
	assert.Equal(t, domain.DoneReasonFilled, order.DoneReason)
	assert.True(t, order.Settled)
}
