/*
coin.go - Fungible coin credit strategy

PURPOSE:
  Fulfils a coin-kind spec by crediting the ambassador's wallet for the
  spec's currency. The wallet is created lazily on first credit.

AMOUNT COMPUTATION:
  base   = spec.Value parsed as an exact decimal
  credit = base                         when the task has no level scaling
  credit = base * coefficient(level)    when task.LevelCoefficient is set

  A level with no coefficient entry aborts only this application with a
  ConfigurationError - it never defaults to 1x.

GUARANTEE:
  On success, Applied.Entry.Value equals the exact amount added to the
  wallet balance in the same atomic operation (see ledger.ApplyCredit).
  Once written, the credit is final.
*/
package reward

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/orbit/reward-engine/ledger"
)

// =============================================================================
// COIN STRATEGY
// =============================================================================

type CoinStrategy struct {
	Ledger       *ledger.WalletLedger
	Coefficients *CoefficientTable
}

func NewCoinStrategy(l *ledger.WalletLedger, coefficients *CoefficientTable) *CoinStrategy {
	return &CoinStrategy{Ledger: l, Coefficients: coefficients}
}

func (s *CoinStrategy) Apply(ctx context.Context, task Task, spec Spec, ambassador Ambassador, points string) Applied {
	entry, err := s.credit(ctx, task, spec, ambassador, points)
	if err != nil {
		return Applied{Kind: KindCoin, OK: false, Err: err, Attempted: true}
	}
	return Applied{Kind: KindCoin, OK: true, Entry: &entry, Attempted: true}
}

func (s *CoinStrategy) credit(ctx context.Context, task Task, spec Spec, ambassador Ambassador, points string) (ledger.Entry, error) {
	base, err := decimal.NewFromString(spec.Value)
	if err != nil {
		return ledger.Entry{}, &ConfigurationError{
			Reason: fmt.Sprintf("coin reward value %q is not a decimal", spec.Value),
		}
	}

	amount := base
	if task.LevelCoefficient {
		coeff, err := s.Coefficients.Coefficient(ambassador.Level)
		if err != nil {
			return ledger.Entry{}, err
		}
		amount = base.Mul(coeff)
	}

	return s.Ledger.Credit(ctx, ledger.CreditRequest{
		AmbassadorID: ambassador.ID,
		CurrencyID:   spec.CurrencyID,
		TaskID:       task.ID,
		Value:        amount,
		Points:       points,
	})
}
