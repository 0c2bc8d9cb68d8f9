package core

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in the given month, leap-aware.
func DaysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	}
	return 0
}

// AddMonths advances d by n calendar months. The day of month is clamped
// to the length of the target month, never rolled over: Jan 31 plus one
// month is Feb 29 in a leap year, Feb 28 otherwise. n must be >= 0.
func AddMonths(d Date, n int) Date {
	year := d.Year() + (d.Month()-1+n)/12
	month := (d.Month()-1+n)%12 + 1
	day := d.Day()
	if max := DaysInMonth(year, month); day > max {
		day = max
	}
	return NewDate(year, month, day)
}
