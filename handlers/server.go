package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/legendiguess/coinbase-dca-bot/domain"
	"github.com/legendiguess/coinbase-dca-bot/services"
)

type workflowService interface {
	Execute(params services.OrderParams) (services.Outcome, error)
}

type serverLogger interface {
	Printf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Server exposes the order workflow over HTTP, for schedulers that trigger
// purchases with a webhook instead of the CLI.
type Server struct {
	workflow    workflowService
	warnAfter   time.Duration
	environment string
	logger      serverLogger
}

func NewServer(workflowService workflowService, warnAfter time.Duration, environment string, serverLogger serverLogger) *Server {
	return &Server{
		workflow:    workflowService,
		warnAfter:   warnAfter,
		environment: environment,
		logger:      serverLogger,
	}
}

func (server *Server) Routes() chi.Router {
	root := chi.NewRouter()

	root.Use(middleware.Logger)
	root.Post("/orders", server.placeOrder)

	return root
}

// Listen blocks serving the order endpoint.
func (server *Server) Listen(addr string) error {
	return http.ListenAndServe(addr, server.Routes())
}

type orderRequestBody struct {
	Market         string `json:"market"`
	Side           string `json:"side"`
	Amount         string `json:"amount"`
	AmountCurrency string `json:"amount_currency"`
}

func (server *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	d, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer r.Body.Close()

	var body orderRequestBody
	if err := json.Unmarshal(d, &body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	side, err := domain.ParseOrderSide(body.Side)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}

	outcome, err := server.workflow.Execute(services.OrderParams{
		Market:         body.Market,
		Side:           side,
		Amount:         amount,
		AmountCurrency: body.AmountCurrency,
		WarnAfter:      server.warnAfter,
		Environment:    server.environment,
	})
	if err != nil {
		server.logger.Warnf("order failed: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		server.logger.Warnf("encode outcome: %v", err)
	}
}
