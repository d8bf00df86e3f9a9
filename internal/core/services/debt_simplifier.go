package services

import (
	"container/heap"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/debt_settlement_app/internal/apperrors"
	"github.com/SscSPs/debt_settlement_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DebtSimplifier accumulates debts between the participants of one event and reduces
// them to a minimal set of settlement payments in a single base currency.
//
// A DebtSimplifier is not safe for concurrent use. Use one instance per event or
// serialize access externally.
type DebtSimplifier struct {
	rates RateConverter

	initialized  bool
	base         string
	participants map[domain.ParticipantID]struct{}
	ledgers      map[domain.ParticipantID][]domain.Debt
	extraCents   map[domain.ParticipantID]int
}

// NewDebtSimplifier creates a simplifier converting amounts with rates.
func NewDebtSimplifier(rates RateConverter) *DebtSimplifier {
	return &DebtSimplifier{rates: rates}
}

// Setup (re)initializes the session with a base currency and a participant set.
// It clears every ledger and extra-cent counter. On error the previous session is kept.
func (s *DebtSimplifier) Setup(base string, participants []domain.ParticipantID) error {
	if s.rates == nil {
		return fmt.Errorf("%w: no exchange rate source configured", apperrors.ErrInvalidConfiguration)
	}
	if base == "" {
		return fmt.Errorf("%w: base currency is required", apperrors.ErrInvalidConfiguration)
	}
	if err := domain.ValidateCurrencyCode(base); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidConfiguration, err)
	}
	if len(participants) == 0 {
		return fmt.Errorf("%w: at least one participant is required", apperrors.ErrInvalidConfiguration)
	}

	set := make(map[domain.ParticipantID]struct{}, len(participants))
	for _, p := range participants {
		if p == "" {
			return fmt.Errorf("%w: participant identity cannot be empty", apperrors.ErrInvalidConfiguration)
		}
		set[p] = struct{}{}
	}

	s.base = base
	s.participants = set
	s.ledgers = make(map[domain.ParticipantID][]domain.Debt, len(set))
	s.extraCents = make(map[domain.ParticipantID]int, len(set))
	s.initialized = true
	return nil
}

// BaseCurrency returns the currency of the session.
func (s *DebtSimplifier) BaseCurrency() string {
	return s.base
}

// ExtraCents returns how many rounding cents p has absorbed in this session.
func (s *DebtSimplifier) ExtraCents(p domain.ParticipantID) int {
	return s.extraCents[p]
}

// Ledger returns a copy of the debts recorded for p.
func (s *DebtSimplifier) Ledger(p domain.ParticipantID) []domain.Debt {
	return append([]domain.Debt(nil), s.ledgers[p]...)
}

// AddDebt converts debt into the base currency using the closest rate for date and
// records it for both parties.
func (s *DebtSimplifier) AddDebt(debt domain.Debt, date time.Time) error {
	converted, ok, err := s.prepareDebt(debt, date)
	if err != nil {
		return err
	}
	if ok {
		s.record(converted)
	}
	return nil
}

// prepareDebt validates and converts debt without touching the session. ok is false when
// the converted amount rounds to zero in the base currency and nothing needs recording.
func (s *DebtSimplifier) prepareDebt(debt domain.Debt, date time.Time) (domain.Debt, bool, error) {
	if !s.initialized {
		return domain.Debt{}, false, apperrors.ErrNotInitialized
	}
	if err := s.checkMember(debt.From); err != nil {
		return domain.Debt{}, false, err
	}
	if err := s.checkMember(debt.To); err != nil {
		return domain.Debt{}, false, err
	}
	if err := debt.Validate(); err != nil {
		return domain.Debt{}, false, err
	}

	amount, err := s.rates.Convert(debt.Amount, date, s.base)
	if err != nil {
		return domain.Debt{}, false, fmt.Errorf("failed to convert debt %s: %w", debt, err)
	}
	if !amount.IsPositive() {
		return domain.Debt{}, false, nil
	}
	return domain.Debt{From: debt.From, To: debt.To, Amount: amount}, true, nil
}

func (s *DebtSimplifier) record(d domain.Debt) {
	s.ledgers[d.From] = append(s.ledgers[d.From], d)
	s.ledgers[d.To] = append(s.ledgers[d.To], d)
}

func (s *DebtSimplifier) checkMember(p domain.ParticipantID) error {
	if _, ok := s.participants[p]; !ok {
		return fmt.Errorf("%w: '%s'", apperrors.ErrUnknownParticipant, p)
	}
	return nil
}

// DivideDebts splits amount, paid by creditor, evenly across debtors. Rounding
// remainders are distributed one cent at a time to the debtors who have received the
// fewest extra cents so far, ties broken by participant order. Every debtor other than
// the creditor ends up owing the creditor their share.
func (s *DebtSimplifier) DivideDebts(creditor domain.ParticipantID, debtors []domain.ParticipantID, amount domain.Money, date time.Time) error {
	if !s.initialized {
		return apperrors.ErrNotInitialized
	}
	if err := s.checkMember(creditor); err != nil {
		return err
	}
	if len(debtors) == 0 {
		return fmt.Errorf("%w: at least one debtor is required", apperrors.ErrValidation)
	}
	seen := make(map[domain.ParticipantID]struct{}, len(debtors))
	for _, d := range debtors {
		if _, dup := seen[d]; dup {
			return fmt.Errorf("%w: debtor '%s' listed more than once", apperrors.ErrValidation, d)
		}
		seen[d] = struct{}{}
		if err := s.checkMember(d); err != nil {
			return err
		}
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount to divide must be positive, got %s", apperrors.ErrValidation, amount)
	}

	converted, err := s.rates.Convert(amount, date, s.base)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", amount, err)
	}

	cent := converted.Cent()
	n := decimal.NewFromInt(int64(len(debtors)))
	remainder := converted.Amount.Mod(cent.Mul(n))
	perPerson := converted.Amount.Sub(remainder).Div(n).Truncate(converted.Precision())
	extra := int(remainder.Div(cent).IntPart())

	awarded := s.pickExtraCentReceivers(debtors, extra)

	debts := make([]domain.Debt, 0, len(debtors))
	for _, d := range debtors {
		if d == creditor {
			continue
		}
		share := perPerson
		if _, ok := awarded[d]; ok {
			share = share.Add(cent)
		}
		if !share.IsPositive() {
			continue
		}
		debt, ok, err := s.prepareDebt(domain.Debt{From: d, To: creditor, Amount: domain.NewMoney(share, s.base)}, date)
		if err != nil {
			return err
		}
		if ok {
			debts = append(debts, debt)
		}
	}

	for p := range awarded {
		s.extraCents[p]++
	}
	for _, d := range debts {
		s.record(d)
	}
	return nil
}

// pickExtraCentReceivers orders debtors by (extra cents received so far, identity) and
// returns the first count of them.
func (s *DebtSimplifier) pickExtraCentReceivers(debtors []domain.ParticipantID, count int) map[domain.ParticipantID]struct{} {
	awarded := make(map[domain.ParticipantID]struct{}, count)
	if count <= 0 {
		return awarded
	}

	ordered := append([]domain.ParticipantID(nil), debtors...)
	domain.SortParticipants(ordered)
	q := make(centQueue, len(ordered))
	for i, p := range ordered {
		q[i] = centEntry{id: p, received: s.extraCents[p]}
	}
	heap.Init(&q)

	for i := 0; i < count && q.Len() > 0; i++ {
		e := heap.Pop(&q).(centEntry)
		awarded[e.id] = struct{}{}
	}
	return awarded
}

// AddTransactions ingests a batch ordered by transaction id. Expenses are divided among
// their debtors; a payoff is recorded as the receiver owing the payer. If any transaction
// fails, the session is restored to its state before the call.
func (s *DebtSimplifier) AddTransactions(txs []domain.Transaction) error {
	if !s.initialized {
		return apperrors.ErrNotInitialized
	}

	ordered := append([]domain.Transaction(nil), txs...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].TransactionID < ordered[j].TransactionID })

	restore := s.checkpoint()
	for _, tx := range ordered {
		if err := s.addTransaction(tx); err != nil {
			restore()
			return fmt.Errorf("transaction %d: %w", tx.TransactionID, err)
		}
	}
	return nil
}

func (s *DebtSimplifier) addTransaction(tx domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.IsPayoff() {
		return s.AddDebt(domain.Debt{From: tx.Receiver, To: tx.Payer, Amount: tx.Amount}, tx.Date)
	}
	return s.DivideDebts(tx.Payer, tx.Debtors, tx.Amount, tx.Date)
}

// checkpoint captures ledger lengths and extra-cent counters; the returned func rolls back to them.
func (s *DebtSimplifier) checkpoint() func() {
	lengths := make(map[domain.ParticipantID]int, len(s.ledgers))
	for p, l := range s.ledgers {
		lengths[p] = len(l)
	}
	cents := make(map[domain.ParticipantID]int, len(s.extraCents))
	for p, c := range s.extraCents {
		cents[p] = c
	}
	return func() {
		for p, l := range s.ledgers {
			s.ledgers[p] = l[:lengths[p]]
		}
		s.extraCents = cents
	}
}

// NetBalances reduces every participant's ledger to one signed amount in the base
// currency: positive when the participant is owed money, negative when they owe.
func (s *DebtSimplifier) NetBalances() (map[domain.ParticipantID]domain.Money, error) {
	if !s.initialized {
		return nil, apperrors.ErrNotInitialized
	}
	balances := make(map[domain.ParticipantID]domain.Money, len(s.participants))
	for p := range s.participants {
		total := domain.ZeroMoney(s.base)
		for _, d := range s.ledgers[p] {
			var err error
			if d.From == p {
				total, err = total.Sub(d.Amount)
			} else if d.To == p {
				total, err = total.Add(d.Amount)
			}
			if err != nil {
				return nil, err
			}
		}
		balances[p] = total
	}
	return balances, nil
}

// Simplify computes the settlement payments. Working queues are rebuilt from the
// ledgers on every call, so repeated calls return the same result.
//
// The result never holds more than k-1 payments, k being the number of participants
// with a nonzero balance.
func (s *DebtSimplifier) Simplify() ([]domain.Debt, error) {
	balances, err := s.NetBalances()
	if err != nil {
		return nil, err
	}

	debtors, creditors := &balanceQueue{}, &balanceQueue{}
	for p, b := range balances {
		switch {
		case b.IsNegative():
			*debtors = append(*debtors, balanceEntry{id: p, amount: b.Amount.Neg()})
		case b.IsPositive():
			*creditors = append(*creditors, balanceEntry{id: p, amount: b.Amount})
		}
	}
	heap.Init(debtors)
	heap.Init(creditors)

	payments := make([]domain.Debt, 0, len(balances))
	for debtors.Len() > 0 && creditors.Len() > 0 {
		creditor := heap.Pop(creditors).(balanceEntry)
		debtor := heap.Pop(debtors).(balanceEntry)

		paid := decimal.Min(creditor.amount, debtor.amount)
		payments = append(payments, domain.Debt{
			From:   debtor.id,
			To:     creditor.id,
			Amount: domain.NewMoney(paid, s.base),
		})

		switch creditor.amount.Cmp(debtor.amount) {
		case 1:
			heap.Push(creditors, balanceEntry{id: creditor.id, amount: creditor.amount.Sub(paid)})
		case -1:
			heap.Push(debtors, balanceEntry{id: debtor.id, amount: debtor.amount.Sub(paid)})
		}
	}

	if debtors.Len() > 0 || creditors.Len() > 0 {
		panic(fmt.Sprintf("debt simplifier: unbalanced ledger in %s, %d debtors and %d creditors left unmatched",
			s.base, debtors.Len(), creditors.Len()))
	}
	return payments, nil
}

type balanceEntry struct {
	id     domain.ParticipantID
	amount decimal.Decimal
}

// balanceQueue is a min-heap by amount, then participant.
type balanceQueue []balanceEntry

func (q balanceQueue) Len() int { return len(q) }
func (q balanceQueue) Less(i, j int) bool {
	if c := q[i].amount.Cmp(q[j].amount); c != 0 {
		return c < 0
	}
	return q[i].id < q[j].id
}
func (q balanceQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *balanceQueue) Push(x any)   { *q = append(*q, x.(balanceEntry)) }
func (q *balanceQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

type centEntry struct {
	id       domain.ParticipantID
	received int
}

// centQueue is a min-heap by extra cents received, then participant.
type centQueue []centEntry

func (q centQueue) Len() int { return len(q) }
func (q centQueue) Less(i, j int) bool {
	if q[i].received != q[j].received {
		return q[i].received < q[j].received
	}
	return q[i].id < q[j].id
}
func (q centQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *centQueue) Push(x any)   { *q = append(*q, x.(centEntry)) }
func (q *centQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}
