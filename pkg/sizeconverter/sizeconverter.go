package sizeconverter

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Float | constraints.Integer
}

const (
	kb = 1024
	mb = 1024 * kb
)

func HumanReadableSizeInMB[N number](size N) string {
	return trimmed(float64(size)/mb, "MB")
}

// HumanReadableSize picks the largest unit that keeps the value at or above one.
func HumanReadableSize[N number](size N) string {
	bytes := float64(size)
	switch {
	case bytes >= mb:
		return trimmed(bytes/mb, "MB")
	case bytes >= kb:
		return trimmed(bytes/kb, "KB")
	}
	return trimmed(bytes, "B")
}

func trimmed(v float64, unit string) string {
	if math.Trunc(v) == v {
		return fmt.Sprintf("%.0f %s", v, unit)
	}
	return fmt.Sprintf("%.2f %s", v, unit)
}
