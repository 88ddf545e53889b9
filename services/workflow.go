package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/legendiguess/coinbase-dca-bot/domain"
)

// pollInterval is the fixed sleep between settlement polls.
const pollInterval = 5 * time.Second

type exchangeService interface {
	GetProduct(id string) (domain.Market, error)
	ListProducts() ([]domain.Market, error)
	PlaceOrder(request domain.OrderRequest) (domain.Order, error)
	GetOrder(id string) (domain.Order, error)
}

type workflowLogger interface {
	Printf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// OrderParams is one order to execute, pre-built by any of the entry points
// (CLI, HTTP, batch, direct call).
type OrderParams struct {
	Market         string
	Side           domain.OrderSide
	Amount         decimal.Decimal
	AmountCurrency string
	WarnAfter      time.Duration
	Environment    string
}

// BatchItem is one order of a batch run; side, warn budget and environment
// come from the batch defaults.
type BatchItem struct {
	Market         string          `json:"market"`
	Amount         decimal.Decimal `json:"amount"`
	AmountCurrency string          `json:"amount_currency"`
}

type OutcomeKind string

const (
	OutcomeSettled      = OutcomeKind("settled")
	OutcomeSubmitFailed = OutcomeKind("submit_failed")
	OutcomeRejected     = OutcomeKind("rejected")
	OutcomeCancelled    = OutcomeKind("cancelled")
	OutcomeTimedOut     = OutcomeKind("timed_out")
	OutcomeError        = OutcomeKind("error")
)

// Outcome describes how a run ended. MarketPrice is only set for settled
// orders.
type Outcome struct {
	Kind        OutcomeKind     `json:"kind"`
	Order       domain.Order    `json:"order"`
	MarketPrice decimal.Decimal `json:"market_price"`
	Reason      string          `json:"reason,omitempty"`
}

// Workflow runs a single market order end to end: normalize the amount,
// submit, poll until settlement, then notify and log the result. All entry
// points funnel into Execute so they cannot drift apart.
type Workflow struct {
	exchange exchangeService
	notifier Notifier
	ledger   Ledger
	logger   workflowLogger
	sleep    func(time.Duration)
}

func NewWorkflow(exchangeService exchangeService, notifier Notifier, ledger Ledger, workflowLogger workflowLogger) *Workflow {
	return &Workflow{
		exchange: exchangeService,
		notifier: notifier,
		ledger:   ledger,
		logger:   workflowLogger,
		sleep:    time.Sleep,
	}
}

// Execute places one market order and follows it to a terminal state. A
// non-nil error means the run could not even talk to the venue properly
// (configuration or transport); venue-side failures come back as an Outcome.
func (workflow *Workflow) Execute(params OrderParams) (Outcome, error) {
	market, err := workflow.exchange.GetProduct(params.Market)
	if err != nil {
		var venueError *domain.VenueError
		if errors.As(err, &venueError) && venueError.IsNotFound() {
			return Outcome{}, workflow.unknownMarketError(params.Market)
		}
		return Outcome{}, err
	}

	request, err := domain.BuildMarketOrder(market, params.Side, params.Amount, params.AmountCurrency)
	if err != nil {
		return Outcome{}, err
	}

	order, err := workflow.exchange.PlaceOrder(request)
	if err != nil {
		var venueError *domain.VenueError
		if errors.As(err, &venueError) {
			workflow.logger.Warnf("Could not place %s %s order: %s", params.Market, params.Side, venueError.Message)
			workflow.publish(fmt.Sprintf("Could not place %s %s order", params.Market, params.Side), venueError)
			return Outcome{Kind: OutcomeSubmitFailed, Reason: venueError.Message}, nil
		}
		return Outcome{}, err
	}

	workflow.logger.Printf("order_id: %s", order.ID)

	if order.Status == domain.OrderStatusRejected {
		workflow.logger.Warnf("%s order rejected: %s", params.Market, order.DoneReason)
		workflow.publish(workflow.subject(params, "REJECTED"), order)
		return Outcome{Kind: OutcomeRejected, Order: order, Reason: order.DoneReason}, nil
	}

	order, earlyOutcome, err := workflow.awaitSettlement(params, order)
	if err != nil {
		return Outcome{}, err
	}
	if earlyOutcome != nil {
		return *earlyOutcome, nil
	}

	if order.DoneReason != domain.DoneReasonFilled {
		reason := order.DoneReason
		if reason == "" {
			reason = order.Status
		}
		workflow.logger.Warnf("Order %s ended %s: %s", order.ID, order.Status, reason)
		workflow.publish(workflow.subject(params, strings.ToUpper(reason)), order)
		return Outcome{Kind: OutcomeRejected, Order: order, Reason: reason}, nil
	}

	price := domain.SettlementPrice(order.ExecutedValue, order.FilledSize, market.QuoteIncrement)

	subject := fmt.Sprintf("%s %s order of %s %s %s @ %s %s",
		params.Market, params.Side, params.Amount, params.AmountCurrency,
		order.Status, price, market.QuoteCurrency)
	workflow.logger.Printf("%s", subject)
	workflow.publish(subject, order)

	workflow.record(domain.LedgerEntry{
		ProductID:      market.ID,
		SpecifiedFunds: specifiedAmount(request),
		ActualFunds:    order.ExecutedValue.String(),
		Fees:           order.FillFees.String(),
		FilledSize:     order.FilledSize.String(),
		MarketPrice:    price.String(),
		Side:           params.Side,
		DoneReason:     order.DoneReason,
		Environment:    params.Environment,
		Status:         order.Status,
		CreatedAt:      order.CreatedAt,
	})

	return Outcome{Kind: OutcomeSettled, Order: order, MarketPrice: price}, nil
}

// ExecuteBatch runs the items one after another with the shared defaults.
// There is no concurrency between items; a failed item does not stop the
// rest.
func (workflow *Workflow) ExecuteBatch(defaults OrderParams, items []BatchItem) []Outcome {
	outcomes := make([]Outcome, 0, len(items))

	for _, item := range items {
		params := defaults
		params.Market = item.Market
		params.Amount = item.Amount
		params.AmountCurrency = item.AmountCurrency

		outcome, err := workflow.Execute(params)
		if err != nil {
			workflow.logger.Warnf("%s: %v", item.Market, err)
			outcome = Outcome{Kind: OutcomeError, Reason: err.Error()}
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}

// awaitSettlement polls the order until it leaves the pending/open states.
// The wait budget is checked at the top of each iteration, before sleeping,
// so a run that is already over budget exits without one more sleep. The
// budget bounds elapsed wait, not the number of polls.
func (workflow *Workflow) awaitSettlement(params OrderParams, order domain.Order) (domain.Order, *Outcome, error) {
	var totalWait time.Duration

	for order.IsOpen() {
		if totalWait > params.WarnAfter {
			workflow.publish(workflow.subject(params, "OPEN/UNFILLED"), order)
			return order, &Outcome{Kind: OutcomeTimedOut, Order: order}, nil
		}

		workflow.logger.Printf("Order %s still %s. Sleeping for %s (total %s)",
			order.ID, order.Status, pollInterval, totalWait)
		workflow.sleep(pollInterval)
		totalWait += pollInterval

		refreshed, err := workflow.exchange.GetOrder(order.ID)
		if err != nil {
			var venueError *domain.VenueError
			if errors.As(err, &venueError) && venueError.IsNotFound() {
				// Most likely the order was manually cancelled in the UI.
				workflow.publish(workflow.subject(params, "CANCELLED"), order)
				return order, &Outcome{Kind: OutcomeCancelled, Order: order}, nil
			}
			return order, nil, err
		}
		order = refreshed
	}

	return order, nil, nil
}

func (workflow *Workflow) subject(params OrderParams, status string) string {
	return fmt.Sprintf("%s %s order of %s %s %s",
		params.Market, params.Side, params.Amount, params.AmountCurrency, status)
}

// publish sends a notification, logging delivery failures instead of letting
// them mask the trading outcome.
func (workflow *Workflow) publish(subject string, body interface{}) {
	encoded, err := json.MarshalIndent(body, "", "    ")
	if err != nil {
		encoded = []byte(fmt.Sprintf("%+v", body))
	}

	if err := workflow.notifier.Publish(subject, string(encoded)); err != nil {
		workflow.logger.Warnf("notification failed: %v", err)
	}
}

// record appends the ledger row, logging failures instead of propagating
// them.
func (workflow *Workflow) record(entry domain.LedgerEntry) {
	if err := workflow.ledger.Append(entry); err != nil {
		workflow.logger.Warnf("ledger append failed: %v", err)
	}
}

func (workflow *Workflow) unknownMarketError(id string) error {
	available, err := workflow.exchange.ListProducts()
	if err != nil {
		return fmt.Errorf("market %s not found", id)
	}

	ids := make([]string, 0, len(available))
	for _, market := range available {
		ids = append(ids, market.ID)
	}

	return fmt.Errorf("market %s not found, available markets: %s (this can be normal in sandbox mode)",
		id, strings.Join(ids, ", "))
}

func specifiedAmount(request domain.OrderRequest) string {
	if request.Funds != "" {
		return request.Funds
	}
	return request.Size
}
