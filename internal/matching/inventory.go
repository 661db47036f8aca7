package matching

import (
	"math"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/idhash"
)

const (
	// PositionEpsilon is the magnitude below which a net position is flat.
	PositionEpsilon = 1e-5

	// quantityTolerance absorbs float residue when deciding whether a lot
	// or an execution is fully consumed.
	quantityTolerance = 1e-9
)

// lotQueue is the FIFO inventory of one asset key.
// Lots are consumed from head; all resident lots share one sign.
type lotQueue struct {
	lots    []domain.OpenLot
	head    int
	matches int // running count of match events, feeds trade ids
}

func (q *lotQueue) empty() bool {
	return q.head >= len(q.lots)
}

func (q *lotQueue) front() *domain.OpenLot {
	return &q.lots[q.head]
}

func (q *lotQueue) push(lot domain.OpenLot) {
	q.lots = append(q.lots, lot)
}

func (q *lotQueue) pop() {
	q.lots[q.head] = domain.OpenLot{}
	q.head++
	if q.head == len(q.lots) {
		q.lots = q.lots[:0]
		q.head = 0
	}
}

func (q *lotQueue) resident() []domain.OpenLot {
	return q.lots[q.head:]
}

// Inventory is the table of per-key FIFO queues used by one matching run.
// Callers own it: build a fresh one per invocation, or pass the same one
// to MatchInto to continue from a previous state. Not safe for concurrent use.
type Inventory struct {
	queues map[domain.AssetKey]*lotQueue
	order  []domain.AssetKey // first-seen order
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{
		queues: make(map[domain.AssetKey]*lotQueue),
	}
}

// Keys returns the asset keys in first-seen order.
func (inv *Inventory) Keys() []domain.AssetKey {
	keys := make([]domain.AssetKey, len(inv.order))
	copy(keys, inv.order)
	return keys
}

// Lots returns a copy of the resident lots of a key, oldest first.
func (inv *Inventory) Lots(key domain.AssetKey) []domain.OpenLot {
	q, ok := inv.queues[key]
	if !ok {
		return nil
	}
	lots := make([]domain.OpenLot, len(q.resident()))
	copy(lots, q.resident())
	return lots
}

// OpenPositions snapshots every key with non-flat exposure, in first-seen
// key order. Positions with |quantity| <= PositionEpsilon are omitted.
func (inv *Inventory) OpenPositions() []*domain.OpenPosition {
	var positions []*domain.OpenPosition

	for _, key := range inv.order {
		lots := inv.queues[key].resident()
		if len(lots) == 0 {
			continue
		}

		net := 0.0
		weighted := 0.0
		for _, lot := range lots {
			net += lot.Quantity
			weighted += lot.EntryPrice * math.Abs(lot.Quantity)
		}
		if math.Abs(net) <= PositionEpsilon {
			continue
		}

		oldest := lots[0]
		positions = append(positions, &domain.OpenPosition{
			AssetKey:   key,
			RootSymbol: oldest.RootSymbol,
			Symbol:     oldest.Symbol,
			AssetClass: oldest.AssetClass,
			Quantity:   net,
			AvgPrice:   weighted / math.Abs(net),
			Multiplier: oldest.Multiplier,
			LotCount:   len(lots),
			OpenedAt:   oldest.EntryTime,
		})
	}

	return positions
}

func (inv *Inventory) queue(key domain.AssetKey) *lotQueue {
	q, ok := inv.queues[key]
	if !ok {
		q = &lotQueue{}
		inv.queues[key] = q
		inv.order = append(inv.order, key)
	}
	return q
}

// adopt moves a key's queue from a partition inventory into inv.
func (inv *Inventory) adopt(key domain.AssetKey, from *Inventory) {
	if q, ok := from.queues[key]; ok {
		inv.queues[key] = q
		inv.order = append(inv.order, key)
	}
}

// apply runs one normalized execution against its key's queue and returns
// the closed trades it produced, in lot order.
func (inv *Inventory) apply(n *normalized) []*domain.ClosedTrade {
	q := inv.queue(n.key)

	if q.empty() || sameSign(q.front().Quantity, n.quantity) {
		q.push(n.openLot(n.quantity))
		return nil
	}

	var closed []*domain.ClosedTrade
	remaining := n.quantity

	for math.Abs(remaining) > quantityTolerance && !q.empty() {
		lot := q.front()
		lotSign := sign(lot.Quantity)
		matched := math.Min(math.Abs(remaining), math.Abs(lot.Quantity))

		gross := (n.exec.Price - lot.EntryPrice) * matched * lot.Multiplier * lotSign
		commission := matched*lot.CommissionPerUnit + matched*n.commissionPerUnit

		direction := domain.DirectionLong
		if lotSign < 0 {
			direction = domain.DirectionShort
		}

		closed = append(closed, &domain.ClosedTrade{
			TradeID:     idhash.ComputeTradeID(n.key, n.exec.ExecutionID, n.exec.TradeTime, q.matches),
			AssetKey:    n.key,
			RootSymbol:  n.root,
			Symbol:      n.exec.Symbol,
			AssetClass:  n.exec.AssetClass,
			Right:       n.exec.Right,
			Strike:      n.exec.Strike,
			Expiry:      n.exec.Expiry,
			Multiplier:  lot.Multiplier,
			Direction:   direction,
			Quantity:    matched,
			EntryTime:   lot.EntryTime,
			CloseTime:   n.exec.TradeTime,
			EntryPrice:  lot.EntryPrice,
			ClosePrice:  n.exec.Price,
			Commission:  commission,
			GrossPnL:    gross,
			NetPnL:      gross - commission,
			CloseReason: n.closeReason,
		})
		q.matches++

		if matched >= math.Abs(lot.Quantity)-quantityTolerance {
			q.pop()
		} else {
			lot.Quantity -= lotSign * matched
		}
		remaining += lotSign * matched
	}

	// Reversal: the execution outlived the queue, open the flipped remainder.
	if math.Abs(remaining) > quantityTolerance {
		q.push(n.openLot(remaining))
	}

	return closed
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
