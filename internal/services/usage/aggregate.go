package usage

import "github.com/Egham-7/llmonitor-api/internal/models"

// ExtendWithCosts fills in the cost of every row from its token counts.
func ExtendWithCosts(rows []models.RunUsage) []models.RunUsage {
	if rows == nil {
		return nil
	}
	for i := range rows {
		rows[i].Cost = CalculateRunCost(rows[i].Name, rows[i].PromptTokens, rows[i].CompletionTokens)
	}
	return rows
}

func extendDailyWithCosts(rows []models.DailyRunUsage) []models.DailyRunUsage {
	for i := range rows {
		rows[i].Cost = CalculateRunCost(rows[i].Name, rows[i].PromptTokens, rows[i].CompletionTokens)
	}
	return rows
}

// ReduceUsersUsage folds usage rows into one summary per user, in the
// order each user first appears. Rows without a user are skipped.
func ReduceUsersUsage(rows []models.RunUsage) []models.UserUsageSummary {
	summaries := make([]models.UserUsageSummary, 0)
	index := make(map[int64]int)

	for _, row := range rows {
		if row.UserID == nil {
			continue
		}
		i, ok := index[*row.UserID]
		if !ok {
			i = len(summaries)
			index[*row.UserID] = i
			summaries = append(summaries, models.UserUsageSummary{UserID: *row.UserID})
		}
		summaries[i].AgentRuns += row.Success + row.Errors
		summaries[i].Cost += row.Cost
	}

	return summaries
}
