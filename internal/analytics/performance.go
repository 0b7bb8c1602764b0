package analytics

import (
	"math"
	"sort"
	"time"

	"tradejournal/internal/domain"
)

// PerformanceMetrics summarises every realized result (partial and final closes).
type PerformanceMetrics struct {
	TotalCloses          int                `json:"totalCloses"`
	Wins                 int                `json:"wins"`
	Losses               int                `json:"losses"`
	WinRate              float64            `json:"winRate"`
	NetResult            float64            `json:"netResult"`
	GrossProfit          float64            `json:"grossProfit"`
	GrossLoss            float64            `json:"grossLoss"`
	ProfitFactor         float64            `json:"profitFactor"`
	AverageWin           float64            `json:"averageWin"`
	AverageLoss          float64            `json:"averageLoss"`
	Expectancy           float64            `json:"expectancy"`
	MaxConsecutiveWins   int                `json:"maxConsecutiveWins"`
	MaxConsecutiveLosses int                `json:"maxConsecutiveLosses"`
	MaxDrawdown          float64            `json:"maxDrawdown"`
	ReturnOnCapital      float64            `json:"returnOnCapital"`
	MonthlyReturns       map[string]float64 `json:"monthlyReturns"`
	EquityCurve          []EquityPoint      `json:"equityCurve"`
}

// EquityPoint is the running balance after a realized result.
type EquityPoint struct {
	Time     time.Time `json:"time"`
	Value    float64   `json:"value"`
	Drawdown float64   `json:"drawdown"`
}

// AnalyzePerformance walks realized results in date order. initialCapital may be zero,
// in which case drawdown and return on capital stay at zero.
func AnalyzePerformance(trades []*domain.Trade, initialCapital float64) *PerformanceMetrics {
	metrics := &PerformanceMetrics{
		MonthlyReturns: make(map[string]float64),
		EquityCurve:    make([]EquityPoint, 0),
	}

	contributions := Contributions(trades)
	if len(contributions) == 0 {
		return metrics
	}
	sort.SliceStable(contributions, func(i, j int) bool {
		return contributions[i].Date.Before(contributions[j].Date)
	})

	balance := initialCapital
	peak := initialCapital
	var consecutiveWins, consecutiveLosses int

	for _, c := range contributions {
		metrics.TotalCloses++
		if c.Result >= 0 {
			metrics.Wins++
			metrics.GrossProfit += c.Result
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			metrics.Losses++
			metrics.GrossLoss += -c.Result
			consecutiveLosses++
			consecutiveWins = 0
		}
		if consecutiveWins > metrics.MaxConsecutiveWins {
			metrics.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > metrics.MaxConsecutiveLosses {
			metrics.MaxConsecutiveLosses = consecutiveLosses
		}

		balance += c.Result
		metrics.NetResult += c.Result
		metrics.MonthlyReturns[BucketKey(c.Date, domain.GroupByMonth)] += c.Result

		var drawdown float64
		if balance > peak {
			peak = balance
		} else if peak > 0 {
			drawdown = (peak - balance) / peak
			metrics.MaxDrawdown = math.Max(metrics.MaxDrawdown, drawdown)
		}
		metrics.EquityCurve = append(metrics.EquityCurve, EquityPoint{Time: c.Date, Value: balance, Drawdown: drawdown})
	}

	metrics.WinRate = float64(metrics.Wins) / float64(metrics.TotalCloses)
	if metrics.Wins > 0 {
		metrics.AverageWin = metrics.GrossProfit / float64(metrics.Wins)
	}
	if metrics.Losses > 0 {
		metrics.AverageLoss = -metrics.GrossLoss / float64(metrics.Losses)
	}
	if metrics.GrossLoss > 0 {
		metrics.ProfitFactor = metrics.GrossProfit / metrics.GrossLoss
	}
	metrics.Expectancy = metrics.WinRate*metrics.AverageWin + (1-metrics.WinRate)*metrics.AverageLoss
	if initialCapital > 0 {
		metrics.ReturnOnCapital = metrics.NetResult / initialCapital
	}
	return metrics
}
