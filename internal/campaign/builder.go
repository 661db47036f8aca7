// Package campaign chains closed trades on one root symbol into long-running
// campaigns, such as a wheel of short puts, assignment and covered calls.
package campaign

import (
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/idhash"
	"trade-journal-lab/internal/logging"
)

// Default tolerance windows.
const (
	// DefaultShortTolerance applies after a manual close.
	DefaultShortTolerance = 2 * time.Hour
	// DefaultLongTolerance applies after an assignment, exercise or
	// expiration, bridging weekends until the follow-up trade.
	DefaultLongTolerance = 4 * 24 * time.Hour
)

// DefaultExcludedRoots are cash-settled index roots that never wheel.
var DefaultExcludedRoots = []string{"SPX", "SPXW"}

// Builder links closed trades into campaigns.
type Builder struct {
	shortMs  int64
	longMs   int64
	excluded map[string]struct{}
	logger   logrus.FieldLogger
}

// Option configures a Builder.
type Option func(*Builder)

// WithTolerances overrides the short and long windows. Non-positive values
// keep the defaults.
func WithTolerances(short, long time.Duration) Option {
	return func(b *Builder) {
		if short > 0 {
			b.shortMs = short.Milliseconds()
		}
		if long > 0 {
			b.longMs = long.Milliseconds()
		}
	}
}

// WithExcludedRoots replaces the excluded root symbols. An empty list
// excludes nothing.
func WithExcludedRoots(roots []string) Option {
	return func(b *Builder) {
		b.excluded = toSet(roots)
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(b *Builder) {
		b.logger = logging.OrDiscard(logger)
	}
}

// NewBuilder creates a campaign builder with the default windows and
// excluded roots.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		shortMs:  DefaultShortTolerance.Milliseconds(),
		longMs:   DefaultLongTolerance.Milliseconds(),
		excluded: toSet(DefaultExcludedRoots),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build chains closed trades into campaigns.
//
// Roots are processed in lexical order and trades within a root by entry
// time. The first trade opens a window ending at its close. A later trade
// joins when it enters no later than the window end plus the tolerance picked
// by how the window-end trade closed (long for passive closes, short
// otherwise); joining moves the window end forward if the trade closes later.
// Any other trade starts a new campaign. Cash-flow rows and excluded roots
// are dropped.
func (b *Builder) Build(closed []*domain.ClosedTrade) []*domain.Campaign {
	byRoot := make(map[string][]*domain.ClosedTrade)
	var roots []string
	dropped := 0

	for _, ct := range closed {
		if ct == nil || ct.IsCashFlow() {
			continue
		}
		if _, skip := b.excluded[strings.ToUpper(ct.RootSymbol)]; skip {
			dropped++
			continue
		}
		if _, ok := byRoot[ct.RootSymbol]; !ok {
			roots = append(roots, ct.RootSymbol)
		}
		byRoot[ct.RootSymbol] = append(byRoot[ct.RootSymbol], ct)
	}
	sort.Strings(roots)

	var campaigns []*domain.Campaign
	for _, root := range roots {
		campaigns = append(campaigns, b.chain(root, byRoot[root])...)
	}

	b.logger.WithFields(logrus.Fields{
		"roots":     len(roots),
		"campaigns": len(campaigns),
		"excluded":  dropped,
	}).Debug("built campaigns")

	return campaigns
}

func (b *Builder) chain(root string, trades []*domain.ClosedTrade) []*domain.Campaign {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].EntryTime < trades[j].EntryTime
	})

	var campaigns []*domain.Campaign
	var members []*domain.ClosedTrade
	windowEnd := trades[0].CloseTime
	windowReason := trades[0].CloseReason

	flush := func() {
		if len(members) > 0 {
			campaigns = append(campaigns, newCampaign(root, members))
		}
		members = nil
	}

	for _, ct := range trades {
		if ct.EntryTime <= windowEnd+b.tolerance(windowReason) {
			members = append(members, ct)
			if ct.CloseTime > windowEnd {
				windowEnd = ct.CloseTime
				windowReason = ct.CloseReason
			}
			continue
		}
		flush()
		members = append(members, ct)
		windowEnd = ct.CloseTime
		windowReason = ct.CloseReason
	}
	flush()

	return campaigns
}

// tolerance returns the allowed gap after a window ending with reason.
func (b *Builder) tolerance(reason domain.CloseReason) int64 {
	if reason.IsPassive() {
		return b.longMs
	}
	return b.shortMs
}

func newCampaign(root string, trades []*domain.ClosedTrade) *domain.Campaign {
	ids := make([]string, len(trades))
	for i, ct := range trades {
		ids[i] = ct.TradeID
	}
	return &domain.Campaign{
		CampaignID: idhash.ComputeCampaignID(ids),
		RootSymbol: root,
		Trades:     trades,
	}
}

func toSet(roots []string) map[string]struct{} {
	set := make(map[string]struct{}, len(roots))
	for _, r := range roots {
		if r = strings.ToUpper(strings.TrimSpace(r)); r != "" {
			set[r] = struct{}{}
		}
	}
	return set
}
