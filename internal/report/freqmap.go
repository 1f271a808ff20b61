package report

import (
	"strconv"
	"strings"
)

// Entry is one label of a FrequencyMap with its occurrence count.
type Entry struct {
	Label string
	Count int64
}

// FrequencyMap counts occurrences per label and remembers the order labels
// were first seen in. The zero value is not usable; call NewFrequencyMap.
type FrequencyMap struct {
	order  []string
	counts map[string]int64
}

// NewFrequencyMap returns a map seeded with entries, in order.
// Later duplicates add to the earlier count; negative counts are ignored.
func NewFrequencyMap(entries ...Entry) *FrequencyMap {
	m := &FrequencyMap{counts: make(map[string]int64, len(entries))}
	for _, e := range entries {
		m.add(e.Label, e.Count)
	}
	return m
}

// Increment adds one occurrence of label.
func (m *FrequencyMap) Increment(label string) {
	m.add(label, 1)
}

func (m *FrequencyMap) add(label string, n int64) {
	if n < 0 {
		return
	}
	if _, ok := m.counts[label]; !ok {
		m.order = append(m.order, label)
	}
	m.counts[label] += n
}

// Count returns the occurrences of label, zero if never seen.
func (m *FrequencyMap) Count(label string) int64 {
	return m.counts[label]
}

// Len is the number of distinct labels.
func (m *FrequencyMap) Len() int {
	return len(m.order)
}

// Entries returns the labels with their counts in first-seen order.
func (m *FrequencyMap) Entries() []Entry {
	entries := make([]Entry, 0, len(m.order))
	for _, label := range m.order {
		entries = append(entries, Entry{Label: label, Count: m.counts[label]})
	}
	return entries
}

// String renders the map as "k1=v1|k2=v2" in first-seen order.
func (m *FrequencyMap) String() string {
	var b strings.Builder
	for i, label := range m.order {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(label)
		b.WriteByte('=')
		b.WriteString(strconv.FormatInt(m.counts[label], 10))
	}
	return b.String()
}
