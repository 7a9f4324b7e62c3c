package monitoring

import (
	"github.com/mezonai/hashledger/block"
	"github.com/mezonai/hashledger/ledger"
)

// BuilderListener feeds builder events into the collectors. It satisfies
// chain.Listener.
type BuilderListener struct{}

func (BuilderListener) TransactionAccepted(*ledger.Transaction) {
	IncreaseAcceptedTxCount()
}

func (BuilderListener) TransactionRejected(_ *ledger.Transaction, err error) {
	RecordRejectedTx(ReasonOf(err))
}

func (BuilderListener) BlockSealed(b *block.Block) {
	SetBlockHeight(b.Number())
	RecordTxInBlock(b.Contents().Len())
}
