package super

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var units = []struct {
	suffix string
	mult   uint64
}{
	{"KB", 1000},
	{"MB", 1000 * 1000},
	{"GB", 1000 * 1000 * 1000},
	{"K", 1000},
	{"M", 1000 * 1000},
	{"G", 1000 * 1000 * 1000},
	{"B", 1},
}

// ParseSize parses a human size such as 600, 600B, 10K, 10KB, 20MB or 1G.
// Units are decimal.
func ParseSize(s string) (uint64, error) {
	num := strings.ToUpper(strings.TrimSpace(s))
	var mult uint64 = 1
	for _, u := range units {
		if strings.HasSuffix(num, u.suffix) {
			num = strings.TrimSuffix(num, u.suffix)
			mult = u.mult
			break
		}
	}
	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad size %q", s)
	}
	if n > math.MaxUint64/mult {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return n * mult, nil
}
