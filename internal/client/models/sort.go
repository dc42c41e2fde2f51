package models

import (
	"sort"
	"time"
)

func sortByTime[T any](items []T, at func(T) time.Time, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := at(items[i]), at(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return key(items[i]) < key(items[j])
	})
}
