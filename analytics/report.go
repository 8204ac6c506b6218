package analytics

import "sort"

// VisitorAverages is the body of avg-visitor and uniq-visitor reports.
type VisitorAverages struct {
	DailyAvg   float64 `json:"dailyAvg"`
	WeeklyAvg  float64 `json:"weeklyAvg"`
	MonthlyAvg float64 `json:"monthlyAvg"`
}

// HourlyCount is one entry of a localTime report.
type HourlyCount struct {
	Hour          string `json:"_id"`
	TotalVisitors int64  `json:"totalVisitors"`
}

func assembleAverages(daily, weekly, monthly []int64) VisitorAverages {
	return VisitorAverages{
		DailyAvg:   mean(daily),
		WeeklyAvg:  mean(weekly),
		MonthlyAvg: mean(monthly),
	}
}

// mean over observed buckets only; no buckets averages to 0.
func mean(counts []int64) float64 {
	var sum int64
	for _, c := range counts {
		sum += c
	}
	n := len(counts)
	if n == 0 {
		n = 1
	}
	return float64(sum) / float64(n)
}

func assembleHourly(counts map[string]int64) []HourlyCount {
	out := make([]HourlyCount, 0, len(counts))
	for hour, n := range counts {
		out = append(out, HourlyCount{Hour: hour, TotalVisitors: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}
