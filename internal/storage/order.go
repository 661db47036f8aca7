package storage

import (
	"sort"

	"trade-journal-lab/internal/domain"
)

// SortStrategySummaries orders summaries by date DESC, strategy_id ASC.
func SortStrategySummaries(summaries []*domain.StrategySummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Date != summaries[j].Date {
			return summaries[i].Date > summaries[j].Date
		}
		return summaries[i].StrategyID < summaries[j].StrategyID
	})
}

// SortCampaignSummaries orders summaries by end_time DESC, campaign_id ASC.
func SortCampaignSummaries(summaries []*domain.CampaignSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].EndTime != summaries[j].EndTime {
			return summaries[i].EndTime > summaries[j].EndTime
		}
		return summaries[i].CampaignID < summaries[j].CampaignID
	})
}
