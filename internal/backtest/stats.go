// Package backtest derives performance statistics from a backtest equity curve.
package backtest

import "math"

const tradingDaysPerYear = 252

// Returns calculates periodic returns from equity values.
func Returns(curve []float64) []float64 {
	if len(curve) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1]
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (curve[i]-prev)/prev)
	}
	return returns
}

// SharpeRatio annualises the mean periodic return over its standard deviation,
// assuming daily periods and a zero risk-free rate.
func SharpeRatio(curve []float64) float64 {
	returns := Returns(curve)
	if len(returns) == 0 {
		return 0
	}
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	return average(returns) / std * math.Sqrt(tradingDaysPerYear)
}

// MaxDrawdownPercent returns the largest peak-to-trough decline in percent.
func MaxDrawdownPercent(curve []float64) float64 {
	maxDD := 0.0
	peak := 0.0
	for _, v := range curve {
		if v > peak {
			peak = v
		}
		if peak == 0 {
			continue
		}
		if dd := (peak - v) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD * 100
}

// WinRatePercent returns wins/total in percent, zero when there were no trades.
func WinRatePercent(wins, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}

// ReturnPercent returns the change from initial to final capital in percent.
func ReturnPercent(initial, final float64) float64 {
	if initial == 0 {
		return 0
	}
	return (final - initial) / initial * 100
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(values)))
}
