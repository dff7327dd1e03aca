package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders integral numbers without a fractional part.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == math.Trunc(f) && math.Abs(f) < 1<<63:
		return strconv.FormatInt(int64(f), 10)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}

// ToDisplay renders a value the way print and concatenation show it.
func ToDisplay(v Value) string {
	var b strings.Builder
	writeDisplay(&b, v, make(map[*Table]bool))
	return b.String()
}

func writeDisplay(b *strings.Builder, v Value, open map[*Table]bool) {
	switch val := v.(type) {
	case nil, NilValue:
		b.WriteString("nil")
	case BooleanValue:
		b.WriteString(strconv.FormatBool(val.Val))
	case NumberValue:
		b.WriteString(FormatNumber(val.Val))
	case StringValue:
		b.WriteString(val.Val)
	case *FunctionValue:
		name := val.Name
		if name == "" {
			name = "anonymous"
		}
		fmt.Fprintf(b, "function: %s", name)
	case *NativeFunctionValue:
		fmt.Fprintf(b, "function: %s", val.Name)
	case TupleValue:
		for idx, item := range val.Values {
			if idx > 0 {
				b.WriteString(", ")
			}
			writeDisplay(b, item, open)
		}
	case *Table:
		writeTable(b, val, open)
	default:
		fmt.Fprintf(b, "%v", v)
	}
}

func writeTable(b *strings.Builder, t *Table, open map[*Table]bool) {
	if open[t] {
		b.WriteString("{ ... }")
		return
	}
	open[t] = true
	defer delete(open, t)

	b.WriteString("{ ")
	count := 0
	for _, item := range t.array {
		if count > 0 {
			b.WriteString(", ")
		}
		writeDisplay(b, item, open)
		count++
	}
	for _, key := range t.Keys() {
		if count > 0 {
			b.WriteString(", ")
		}
		b.WriteString(key)
		b.WriteString(" : ")
		writeDisplay(b, t.hash[key], open)
		count++
	}
	if count > 0 {
		b.WriteString(" ")
	}
	b.WriteString("}")
}

// ParseNumber converts text using the language's numeral syntax: decimal with
// optional fraction and exponent, or 0x hex integers. Surrounding whitespace is allowed.
func ParseNumber(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	neg := false
	body := s
	if body[0] == '-' || body[0] == '+' {
		neg = body[0] == '-'
		body = body[1:]
	}
	if len(body) > 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		n, err := strconv.ParseUint(body[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		f := float64(n)
		if neg {
			f = -f
		}
		return f, true
	}
	for idx := 0; idx < len(body); idx++ {
		c := body[idx]
		if !(c >= '0' && c <= '9') && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
