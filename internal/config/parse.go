package config

import (
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

var (
	trueLiterals  = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "on": {}}
	falseLiterals = map[string]struct{}{"0": {}, "false": {}, "no": {}, "off": {}}
)

func ParseBool(raw, key string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := trueLiterals[v]; ok {
		return true, nil
	}
	if _, ok := falseLiterals[v]; ok {
		return false, nil
	}
	return false, errors.Errorf("invalid value for %s: %q", key, raw)
}

// ParseIntInRange parses a string into an int and ensures it falls within [min, max].
// If max < min, the upper bound is ignored.
func ParseIntInRange(raw, key string, min, max int) (int, error) {
	n, err := parseInt(raw, key)
	if err != nil {
		return 0, err
	}
	return n, checkRange(n, key, min, max)
}

func checkRange(n int, key string, min, max int) error {
	if n < min {
		if max >= min {
			return errors.Errorf("%s must be between %d and %d", key, min, max)
		}
		return errors.Errorf("%s must be >= %d", key, min)
	}
	if max >= min && n > max {
		return errors.Errorf("%s must be between %d and %d", key, min, max)
	}
	return nil
}

func parseInt(raw, key string) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, errors.Errorf("invalid integer value for %s: %q", key, raw)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Errorf("invalid integer value for %s: %q", key, raw)
	}
	return n, nil
}
