package monitoring

import (
	"errors"
	"sync"

	"github.com/mezonai/hashledger/ledger"
	"github.com/mezonai/hashledger/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type TxRejectedReason string

var (
	TxUnbalanced          TxRejectedReason = "unbalanced"
	TxInsufficientBalance TxRejectedReason = "insufficient_balance"
	TxBalanceOverflow     TxRejectedReason = "balance_overflow"
	TxSeedNotTransfer     TxRejectedReason = "seed_not_transfer"
	TxRejectedUnknown     TxRejectedReason = "other"
)

// ReasonOf maps a ledger validation error to its metric label.
func ReasonOf(err error) TxRejectedReason {
	switch {
	case errors.Is(err, ledger.ErrUnbalanced):
		return TxUnbalanced
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return TxInsufficientBalance
	case errors.Is(err, ledger.ErrBalanceOverflow):
		return TxBalanceOverflow
	case errors.Is(err, ledger.ErrSeedNotTransfer):
		return TxSeedNotTransfer
	default:
		return TxRejectedUnknown
	}
}

type simPromMetrics struct {
	gatherer         prometheus.Gatherer
	rejectedTxCount  *prometheus.CounterVec
	acceptedTxCount  prometheus.Counter
	blockHeight      prometheus.Gauge
	txInBlock        prometheus.Histogram
	chainValidations *prometheus.CounterVec
}

func newSimPromMetrics(reg prometheus.Registerer, gatherer prometheus.Gatherer) *simPromMetrics {
	factory := promauto.With(reg)
	return &simPromMetrics{
		gatherer: gatherer,
		rejectedTxCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hashledger_rejected_tx_count",
				Help: "The total number of transactions dropped by the builder",
			},
			[]string{"reason"},
		),
		acceptedTxCount: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hashledger_accepted_tx_count",
				Help: "The total number of transactions accepted into blocks",
			},
		),
		blockHeight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hashledger_block_height",
				Help: "Number of the last sealed block",
			},
		),
		txInBlock: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hashledger_tx_in_block",
				Help:    "Number of tx in block",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
		),
		chainValidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hashledger_chain_validations",
				Help: "Chains replayed by the validator, by outcome",
			},
			[]string{"result"},
		),
	}
}

var (
	initOnce   sync.Once
	simMetrics *simPromMetrics
)

// InitMetrics registers the collectors with the default registry. Until it
// is called every Record function is a no-op.
func InitMetrics() {
	initOnce.Do(func() {
		simMetrics = newSimPromMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	})
}

func RecordRejectedTx(reason TxRejectedReason) {
	if simMetrics == nil {
		return
	}
	simMetrics.rejectedTxCount.With(prometheus.Labels{
		"reason": string(reason),
	}).Inc()
}

func IncreaseAcceptedTxCount() {
	if simMetrics == nil {
		return
	}
	simMetrics.acceptedTxCount.Inc()
}

func SetBlockHeight(blockHeight uint64) {
	if simMetrics == nil {
		return
	}
	simMetrics.blockHeight.Set(float64(blockHeight))
}

func RecordTxInBlock(txCount int) {
	if simMetrics == nil {
		return
	}
	simMetrics.txInBlock.Observe(float64(txCount))
}

// RecordValidation counts one chain validation outcome.
func RecordValidation(err error) {
	if simMetrics == nil {
		return
	}
	result := "valid"
	if err != nil {
		result = "invalid"
	}
	simMetrics.chainValidations.With(prometheus.Labels{"result": result}).Inc()
}

// WriteTextfile dumps the current metrics in text exposition format, for
// runs too short to be scraped.
func WriteTextfile(path string) error {
	if simMetrics == nil {
		return errors.New("metrics not initialized")
	}
	if err := prometheus.WriteToTextfile(path, simMetrics.gatherer); err != nil {
		return logx.Errorf("write metrics to %s: %w", path, err)
	}
	logx.Info("METRICS", "Wrote metrics to ", path)
	return nil
}
