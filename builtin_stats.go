package formula

import "math"

func numericArgs(args []any) []float64 {
	nums := []float64{}
	for _, arg := range args {
		for _, v := range rangeValues(arg) {
			if num, ok := toNumber(v); ok {
				nums = append(nums, num)
			}
		}
	}
	return nums
}

func mean(nums []float64) float64 {
	sum := 0.0
	for _, n := range nums {
		sum += n
	}
	return sum / float64(len(nums))
}

// sampleVariance is the Bessel-corrected (n-1) variance STDEV/VAR use, as
// distinguished from the population variants (STDEVP/VARP, not implemented).
func sampleVariance(nums []float64) float64 {
	m := mean(nums)
	sumSq := 0.0
	for _, n := range nums {
		d := n - m
		sumSq += d * d
	}
	return sumSq / float64(len(nums)-1)
}

func (bf *BuiltInFunctions) STDEV(args ...any) (Primitive, error) {
	nums := numericArgs(args)
	if len(nums) < 2 {
		return nil, NewSpreadsheetError(ErrorCodeDiv0, "STDEV requires at least 2 numeric values")
	}
	return math.Sqrt(sampleVariance(nums)), nil
}

func (bf *BuiltInFunctions) VAR(args ...any) (Primitive, error) {
	nums := numericArgs(args)
	if len(nums) < 2 {
		return nil, NewSpreadsheetError(ErrorCodeDiv0, "VAR requires at least 2 numeric values")
	}
	return sampleVariance(nums), nil
}

// linearRegression computes the least-squares slope and intercept for y = slope*x + intercept.
func linearRegression(xs, ys []float64) (slope, intercept float64, err error) {
	n := float64(len(xs))
	if len(xs) != len(ys) || len(xs) == 0 {
		return 0, 0, NewSpreadsheetError(ErrorCodeNA, "x and y arrays must be the same non-empty size")
	}
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0, NewSpreadsheetError(ErrorCodeDiv0, "x values have zero variance")
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, nil
}

// LINEST(known_ys, known_xs) -- returns {slope, intercept} as a 1x2 array,
// the common two-coefficient simple-regression case; multiple-regression
// LINEST (more than one x column) is not supported.
func (bf *BuiltInFunctions) LINEST(args ...any) (Primitive, error) {
	if len(args) != 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "LINEST requires known_ys and known_xs arguments")
	}
	ys := rangeValues(args[0])
	xs := rangeValues(args[1])
	yNums := make([]float64, len(ys))
	xNums := make([]float64, len(xs))
	for i, v := range ys {
		n, ok := toNumber(v)
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "LINEST requires numeric known_ys")
		}
		yNums[i] = n
	}
	for i, v := range xs {
		n, ok := toNumber(v)
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "LINEST requires numeric known_xs")
		}
		xNums[i] = n
	}
	slope, intercept, err := linearRegression(xNums, yNums)
	if err != nil {
		return nil, err
	}
	return NewArrayValue(1, 2, []Primitive{slope, intercept}), nil
}

// TREND(known_ys, known_xs, new_xs) fits a line through known_ys/known_xs
// and evaluates it at each point in new_xs.
func (bf *BuiltInFunctions) TREND(args ...any) (Primitive, error) {
	if len(args) != 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "TREND requires known_ys, known_xs, and new_xs arguments")
	}
	yNums := make([]float64, 0)
	for _, v := range rangeValues(args[0]) {
		n, ok := toNumber(v)
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "TREND requires numeric known_ys")
		}
		yNums = append(yNums, n)
	}
	xNums := make([]float64, 0)
	for _, v := range rangeValues(args[1]) {
		n, ok := toNumber(v)
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "TREND requires numeric known_xs")
		}
		xNums = append(xNums, n)
	}
	slope, intercept, err := linearRegression(xNums, yNums)
	if err != nil {
		return nil, err
	}
	newXs := rangeValues(args[2])
	cells := make([]Primitive, len(newXs))
	for i, v := range newXs {
		n, ok := toNumber(v)
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "TREND requires numeric new_xs")
		}
		cells[i] = slope*n + intercept
	}
	return NewArrayValue(1, len(cells), cells), nil
}

func (bf *BuiltInFunctions) FORECAST(args ...any) (Primitive, error) {
	if len(args) != 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "FORECAST requires x, known_ys, and known_xs arguments")
	}
	x, ok := toNumber(args[0])
	if !ok {
		return nil, NewSpreadsheetError(ErrorCodeValue, "FORECAST requires a numeric x")
	}
	yNums := make([]float64, 0)
	for _, v := range rangeValues(args[1]) {
		n, ok := toNumber(v)
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "FORECAST requires numeric known_ys")
		}
		yNums = append(yNums, n)
	}
	xNums := make([]float64, 0)
	for _, v := range rangeValues(args[2]) {
		n, ok := toNumber(v)
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "FORECAST requires numeric known_xs")
		}
		xNums = append(xNums, n)
	}
	slope, intercept, err := linearRegression(xNums, yNums)
	if err != nil {
		return nil, err
	}
	return slope*x + intercept, nil
}
