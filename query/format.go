package query

import (
	"strconv"
	"strings"
)

// formatCell renders a value's display text per a spreadsheet-style format
// pattern. Number patterns use # 0 , . with optional literal prefix/suffix
// (e.g. "$#,##0.00", "0.0%"); date patterns use yyyy MM dd HH mm ss.
func formatCell(v Value, pattern string) string {
	switch v.Kind {
	case KindDate:
		return v.Time.Format(dateGoLayout(pattern))
	case KindNumber:
		return formatNumber(v.Num, pattern)
	default:
		if n, ok := v.asNumber(); ok && strings.ContainsAny(pattern, "#0") {
			return formatNumber(n, pattern)
		}
		return v.Text()
	}
}

var dateLayoutParts = []struct{ pat, layout string }{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MM", "01"},
	{"dd", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

func dateGoLayout(pattern string) string {
	if !strings.ContainsAny(pattern, "yMdHs") {
		return "2006-01-02"
	}
	out := pattern
	for _, p := range dateLayoutParts {
		out = strings.ReplaceAll(out, p.pat, p.layout)
	}
	return out
}

func formatNumber(n float64, pattern string) string {
	start := strings.IndexAny(pattern, "#0")
	if start < 0 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	end := strings.LastIndexAny(pattern, "#0.,")
	prefix := pattern[:start]
	suffix := pattern[end+1:]
	numPat := pattern[start : end+1]

	if strings.HasSuffix(suffix, "%") || strings.HasPrefix(suffix, "%") {
		n *= 100
	}

	decimals := 0
	if dot := strings.IndexByte(numPat, '.'); dot >= 0 {
		decimals = len(numPat) - dot - 1
	}

	text := strconv.FormatFloat(n, 'f', decimals, 64)
	if strings.Contains(numPat, ",") {
		text = groupThousands(text)
	}
	return prefix + text + suffix
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
