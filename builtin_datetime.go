package formula

import "time"

func (bf *BuiltInFunctions) DATE(args ...any) (Primitive, error) {
	if len(args) != 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "DATE requires exactly 3 arguments")
	}
	y, ok1 := toNumber(args[0])
	m, ok2 := toNumber(args[1])
	d, ok3 := toNumber(args[2])
	if !ok1 || !ok2 || !ok3 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "DATE requires numeric arguments")
	}
	year := int(y)
	if year < 100 {
		year += 1900
	}
	t := time.Date(year, time.Month(1), 1, 0, 0, 0, 0, time.UTC).AddDate(0, int(m)-1, int(d)-1)
	return TimeToSerial(t, bf.dateSystem), nil
}

func (bf *BuiltInFunctions) serialArg(args []any, name string) (time.Time, error) {
	if len(args) != 1 {
		return time.Time{}, NewSpreadsheetError(ErrorCodeNA, name+" requires exactly 1 argument")
	}
	num, ok := toNumber(args[0])
	if !ok {
		return time.Time{}, NewSpreadsheetError(ErrorCodeValue, name+" requires a numeric argument")
	}
	return SerialToTime(num, bf.dateSystem), nil
}

func (bf *BuiltInFunctions) YEAR(args ...any) (Primitive, error) {
	t, err := bf.serialArg(args, "YEAR")
	if err != nil {
		return nil, err
	}
	return float64(t.Year()), nil
}

func (bf *BuiltInFunctions) MONTH(args ...any) (Primitive, error) {
	t, err := bf.serialArg(args, "MONTH")
	if err != nil {
		return nil, err
	}
	return float64(t.Month()), nil
}

func (bf *BuiltInFunctions) DAY(args ...any) (Primitive, error) {
	t, err := bf.serialArg(args, "DAY")
	if err != nil {
		return nil, err
	}
	return float64(t.Day()), nil
}

func (bf *BuiltInFunctions) HOUR(args ...any) (Primitive, error) {
	t, err := bf.serialArg(args, "HOUR")
	if err != nil {
		return nil, err
	}
	return float64(t.Hour()), nil
}

func (bf *BuiltInFunctions) MINUTE(args ...any) (Primitive, error) {
	t, err := bf.serialArg(args, "MINUTE")
	if err != nil {
		return nil, err
	}
	return float64(t.Minute()), nil
}

func (bf *BuiltInFunctions) SECOND(args ...any) (Primitive, error) {
	t, err := bf.serialArg(args, "SECOND")
	if err != nil {
		return nil, err
	}
	return float64(t.Second()), nil
}

// WEEKDAY(serial[, return_type]) -- return_type 1 (default): Sunday=1..Saturday=7;
// 2: Monday=1..Sunday=7; 3: Monday=0..Sunday=6.
func (bf *BuiltInFunctions) WEEKDAY(args ...any) (Primitive, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "WEEKDAY requires 1 or 2 arguments")
	}
	num, ok := toNumber(args[0])
	if !ok {
		return nil, NewSpreadsheetError(ErrorCodeValue, "WEEKDAY requires a numeric argument")
	}
	returnType := 1.0
	if len(args) == 2 {
		returnType, ok = toNumber(args[1])
		if !ok {
			return nil, NewSpreadsheetError(ErrorCodeValue, "WEEKDAY requires a numeric return type")
		}
	}
	t := SerialToTime(num, bf.dateSystem)
	wd := int(t.Weekday())
	switch int(returnType) {
	case 2:
		return float64((wd+6)%7 + 1), nil
	case 3:
		return float64((wd + 6) % 7), nil
	default:
		return float64(wd + 1), nil
	}
}

// DATEDIF(start, end, unit) -- unit is one of "Y","M","D","MD","YM","YD".
func (bf *BuiltInFunctions) DATEDIF(args ...any) (Primitive, error) {
	if len(args) != 3 {
		return nil, NewSpreadsheetError(ErrorCodeNA, "DATEDIF requires exactly 3 arguments")
	}
	startNum, ok1 := toNumber(args[0])
	endNum, ok2 := toNumber(args[1])
	if !ok1 || !ok2 {
		return nil, NewSpreadsheetError(ErrorCodeValue, "DATEDIF requires numeric start/end")
	}
	if startNum > endNum {
		return nil, NewSpreadsheetError(ErrorCodeNum, "DATEDIF start date must not be after end date")
	}
	unit := toString(args[2])
	start := SerialToTime(startNum, bf.dateSystem)
	end := SerialToTime(endNum, bf.dateSystem)

	switch unit {
	case "Y", "y":
		years := end.Year() - start.Year()
		if end.YearDay() < start.YearDay() {
			years--
		}
		return float64(years), nil
	case "M", "m":
		months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
		if end.Day() < start.Day() {
			months--
		}
		return float64(months), nil
	case "D", "d":
		return end.Sub(start).Hours() / 24, nil
	case "MD":
		day := end.Day() - start.Day()
		if day < 0 {
			prevMonth := end.AddDate(0, -1, 0)
			lastDayOfPrevMonth := time.Date(prevMonth.Year(), prevMonth.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
			day += lastDayOfPrevMonth
		}
		return float64(day), nil
	case "YM":
		months := int(end.Month()) - int(start.Month())
		if end.Day() < start.Day() {
			months--
		}
		if months < 0 {
			months += 12
		}
		return float64(months), nil
	case "YD":
		sameYearStart := time.Date(end.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		if sameYearStart.After(end) {
			sameYearStart = time.Date(end.Year()-1, start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		}
		return end.Sub(sameYearStart).Hours() / 24, nil
	default:
		return nil, NewSpreadsheetError(ErrorCodeNum, "DATEDIF unit must be Y, M, D, MD, YM, or YD")
	}
}
