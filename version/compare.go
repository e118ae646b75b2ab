package version

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Compare compares two major.minor.patch versions, with or without a "v"
// prefix. Pre-release and build suffixes are ignored.
// It returns 1 if a > b, -1 if a < b and 0 if they are equal.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	return slices.Compare(av, bv), nil
}

func parse(s string) ([]int, error) {
	core := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}

	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed version %q", s)
	}

	out := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("malformed version %q", s)
		}
		out[i] = n
	}
	return out, nil
}
