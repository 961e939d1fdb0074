package monitoring

import (
	"net/http"
	"sync"

	"github.com/holiman/uint256"
	"github.com/mezonai/simledger/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type OpRejectedReason string

var (
	OpInvalidArgument    OpRejectedReason = "invalid_argument"
	OpInvalidAddress     OpRejectedReason = "invalid_address"
	OpAccountNotFound    OpRejectedReason = "account_not_found"
	OpInsufficientFunds  OpRejectedReason = "insufficient_funds"
	OpBalanceOverflow    OpRejectedReason = "overflow"
	OpDuplicateAddress   OpRejectedReason = "duplicate_address"
	OpInvariantViolation OpRejectedReason = "invariant_violation"
	OpRejectedUnknown    OpRejectedReason = "other"
)

type ledgerPromMetrics struct {
	ledgerUpUnixSeconds prometheus.Gauge
	accountCount        prometheus.Gauge
	accountsCreated     prometheus.Counter
	rejectedOpCount     *prometheus.CounterVec
	debitedAmount       prometheus.Counter
	creditedAmount      prometheus.Counter
	nonceIncrements     prometheus.Counter
	panicCount          prometheus.Counter
}

func newLedgerPromMetrics() *ledgerPromMetrics {
	return &ledgerPromMetrics{
		ledgerUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "simledger_up_timestamp_unix_seconds",
				Help: "Unix timestamp of ledger start",
			},
		),
		accountCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "simledger_account_count",
				Help: "The number of accounts held by the ledger",
			},
		),
		accountsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "simledger_accounts_created_total",
				Help: "The total number of accounts created",
			},
		),
		rejectedOpCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simledger_rejected_op_count",
				Help: "The total number of rejected ledger operations",
			},
			[]string{"reason"},
		),
		debitedAmount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "simledger_debited_amount_total",
				Help: "Sum of all successful deductions, in smallest units",
			},
		),
		creditedAmount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "simledger_credited_amount_total",
				Help: "Sum of all successful credits, in smallest units",
			},
		),
		nonceIncrements: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "simledger_nonce_increments_total",
				Help: "The total number of nonce increments",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "simledger_panic_count",
				Help: "The total number of recovered panics",
			},
		),
	}
}

var (
	initOnce      sync.Once
	ledgerMetrics *ledgerPromMetrics
)

// InitMetrics registers ledger metrics on the default registry. Safe to call more than once.
// Until it is called every recording function is a no-op.
func InitMetrics() {
	initOnce.Do(func() {
		ledgerMetrics = newLedgerPromMetrics()
		ledgerMetrics.ledgerUpUnixSeconds.SetToCurrentTime()
	})
}

func RegisterMetrics(mux *http.ServeMux) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	mux.Handle("/metrics", promhttp.Handler())
}

func SetAccountCount(count int) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.accountCount.Set(float64(count))
}

func RecordAccountsCreated(count int) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.accountsCreated.Add(float64(count))
}

func RecordRejectedOp(reason OpRejectedReason) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.rejectedOpCount.With(prometheus.Labels{
		"reason": string(reason),
	}).Inc()
}

func RecordDebit(amount *uint256.Int) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.debitedAmount.Add(amount.Float64())
}

func RecordCredit(amount *uint256.Int) {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.creditedAmount.Add(amount.Float64())
}

func IncreaseNonceIncrements() {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.nonceIncrements.Inc()
}

func IncreasePanicCount() {
	if ledgerMetrics == nil {
		return
	}
	ledgerMetrics.panicCount.Inc()
}
