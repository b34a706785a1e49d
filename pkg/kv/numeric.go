package kv

import "strconv"

func parseInt(s string, out *int64) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*out = v
	}
}

func parseFloat(s string, out *float64) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*out = v
	}
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
