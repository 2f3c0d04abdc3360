package xlsx

import (
	"encoding/xml"
	"fmt"
	"math"
	"strings"
)

type stylesheetXML struct {
	XMLName xml.Name `xml:"styleSheet"`
	NumFmts struct {
		NumFmt []struct {
			ID   uint32 `xml:"numFmtId,attr"`
			Code string `xml:"formatCode,attr"`
		} `xml:"numFmt"`
	} `xml:"numFmts"`
	CellXfs struct {
		Xf []struct {
			NumFmtID uint32 `xml:"numFmtId,attr"`
		} `xml:"xf"`
	} `xml:"cellXfs"`
}

// styles holds the number-format information from xl/styles.xml needed to
// decide whether a numeric cell carries a date.
type styles struct {
	// numFmts maps custom numFmtId to its format code.
	numFmts map[uint32]string
	// cellXfs maps cell style index to numFmtId.
	cellXfs []uint32
}

// newStyles parses xl/styles.xml content. Nil or malformed data yields an
// empty lookup; cells then never resolve to a date format.
func newStyles(data []byte) *styles {
	s := &styles{numFmts: make(map[uint32]string)}
	if len(data) == 0 {
		return s
	}
	var sheet stylesheetXML
	if err := xml.Unmarshal(data, &sheet); err != nil {
		return s
	}
	for _, f := range sheet.NumFmts.NumFmt {
		s.numFmts[f.ID] = f.Code
	}
	for _, xf := range sheet.CellXfs.Xf {
		s.cellXfs = append(s.cellXfs, xf.NumFmtID)
	}
	return s
}

// isDateStyle reports whether the given cell style index refers to a date
// or time number format.
func (s *styles) isDateStyle(styleIndex int) bool {
	if styleIndex < 0 || styleIndex >= len(s.cellXfs) {
		return false
	}
	return s.isDateFormat(s.cellXfs[styleIndex])
}

// isDateFormat checks a numFmtId: built-in ids 14-22 are date formats and
// 45-47 are time formats; custom ids are inspected by format code.
func (s *styles) isDateFormat(numFmtID uint32) bool {
	if (numFmtID >= 14 && numFmtID <= 22) || (numFmtID >= 45 && numFmtID <= 47) {
		return true
	}
	if code, ok := s.numFmts[numFmtID]; ok {
		return isDateFormatCode(code)
	}
	return false
}

// isDateFormatCode scans a custom format code for date patterns (d, y, and
// month m), ignoring text inside square brackets and double quotes where
// those letters carry no date meaning.
func isDateFormatCode(code string) bool {
	inBracket := false
	inQuote := false
	var prev rune

	for _, c := range code {
		switch {
		case c == '[' && !inQuote:
			inBracket = true
		case c == ']' && !inQuote:
			inBracket = false
		case c == '"':
			inQuote = !inQuote
		case !inBracket && !inQuote:
			switch lower := toLowerASCII(c); lower {
			case 'd', 'y':
				return true
			case 'm':
				// Month or minute. A preceding d/y, or d/y anywhere in
				// the code, marks it as a month.
				if p := toLowerASCII(prev); p == 'd' || p == 'y' {
					return true
				}
				lowerCode := strings.ToLower(code)
				if strings.ContainsRune(lowerCode, 'd') || strings.ContainsRune(lowerCode, 'y') {
					return true
				}
			}
		}
		prev = c
	}
	return false
}

func toLowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// serialToDate converts an Excel serial date number to an ISO 8601 string:
// "2021-01-01" or, when a time fraction is present, "2021-01-01T12:00:00".
// Returns ok=false for serials before day 1.
//
// Excel counts days from January 1, 1900 as day 1 and, for Lotus 1-2-3
// compatibility, pretends February 29, 1900 existed as serial 60; serials
// beyond 60 are shifted down by one.
func serialToDate(serial float64) (string, bool) {
	if serial < 1 {
		return "", false
	}
	adjusted := serial
	if serial > 60 {
		adjusted = serial - 1
	}
	days := int64(math.Floor(adjusted))

	year, month, day, ok := daysToYMD(days)
	if !ok {
		return "", false
	}

	frac := serial - math.Floor(serial)
	if frac > 0.0001 {
		total := int64(math.Round(frac * 86400))
		h := total / 3600
		m := (total % 3600) / 60
		sec := total % 60
		return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", year, month, day, h, m, sec), true
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// daysToYMD converts days since December 31, 1899 (day 1 = 1900-01-01) to a
// calendar date.
func daysToYMD(days int64) (year, month, day int, ok bool) {
	if days < 1 {
		return 0, 0, 0, false
	}
	year = 1900
	remaining := days
	for {
		inYear := int64(365)
		if isLeapYear(year) {
			inYear = 366
		}
		if remaining <= inYear {
			break
		}
		remaining -= inYear
		year++
	}

	monthDays := [12]int64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	if isLeapYear(year) {
		monthDays[1] = 29
	}
	month = 1
	for _, d := range monthDays {
		if remaining <= d {
			break
		}
		remaining -= d
		month++
	}
	day = int(remaining)
	if day < 1 {
		day = 1
	}
	return year, month, day, true
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}
