package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// EncodeIDList renders ids as "1,2,3," (trailing comma, empty for no ids).
func EncodeIDList(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(strconv.FormatInt(id, 10))
		b.WriteByte(',')
	}
	return b.String()
}

// ParseIDList reads a comma separated id list. Empty segments are skipped,
// so both "1,2," and legacy "1,,2," forms decode to [1 2].
func ParseIDList(s string) ([]int64, error) {
	if s == "" {
		return []int64{}, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q in list %q: %w", p, s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
