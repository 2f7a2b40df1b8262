// Package analytics keeps per-user answer aggregates and turns them into
// weak/strong topics and study recommendations.
package analytics

import (
	"sort"
	"time"
)

// Thresholds for weak and strong categories.
const (
	WeakAccuracy   = 0.60
	WeakMinSamples = 3

	StrongAccuracy   = 0.80
	StrongMinSamples = 5
)

// Bucket is a running total for one category or question type.
type Bucket struct {
	Total   int
	Correct int
	Elapsed time.Duration // sum over timed answers
	Timed   int
}

// Accuracy returns Correct / Total, 0 when empty.
func (b Bucket) Accuracy() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Correct) / float64(b.Total)
}

// AverageTime is the mean response time over timed answers.
func (b Bucket) AverageTime() time.Duration {
	if b.Timed == 0 {
		return 0
	}
	return b.Elapsed / time.Duration(b.Timed)
}

// Tracker aggregates one user's answers.
type Tracker struct {
	Overall    Bucket
	Categories map[string]*Bucket
	Types      map[string]*Bucket
	LastActive time.Time
	// LastAnswerID is the newest persisted answer folded in.
	LastAnswerID int64
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		Categories: make(map[string]*Bucket),
		Types:      make(map[string]*Bucket),
	}
}

// RecordAnswer folds one answer into the aggregates. elapsed of 0 means
// the response time is unknown.
func (t *Tracker) RecordAnswer(category, questionType string, correct bool, elapsed time.Duration, at time.Time) {
	add := func(b *Bucket) {
		b.Total++
		if correct {
			b.Correct++
		}
		if elapsed > 0 {
			b.Elapsed += elapsed
			b.Timed++
		}
	}
	add(&t.Overall)
	add(bucket(t.Categories, category))
	add(bucket(t.Types, questionType))
	if at.After(t.LastActive) {
		t.LastActive = at
	}
}

func bucket(m map[string]*Bucket, key string) *Bucket {
	b, ok := m[key]
	if !ok {
		b = &Bucket{}
		m[key] = b
	}
	return b
}

// Accuracy is the overall accuracy.
func (t *Tracker) Accuracy() float64 {
	return t.Overall.Accuracy()
}

// WeakCategories returns categories below WeakAccuracy with at least
// WeakMinSamples answers, weakest first.
func (t *Tracker) WeakCategories() []string {
	return selectKeys(t.Categories, func(b *Bucket) bool {
		return b.Total >= WeakMinSamples && b.Accuracy() < WeakAccuracy
	}, true)
}

// StrongCategories returns categories above StrongAccuracy with at least
// StrongMinSamples answers, strongest first.
func (t *Tracker) StrongCategories() []string {
	return selectKeys(t.Categories, func(b *Bucket) bool {
		return b.Total >= StrongMinSamples && b.Accuracy() > StrongAccuracy
	}, false)
}

// WeakTypes returns question types that meet the weak-category rule.
func (t *Tracker) WeakTypes() []string {
	return selectKeys(t.Types, func(b *Bucket) bool {
		return b.Total >= WeakMinSamples && b.Accuracy() < WeakAccuracy
	}, true)
}

func selectKeys(m map[string]*Bucket, keep func(*Bucket) bool, ascending bool) []string {
	var keys []string
	for k, b := range m {
		if keep(b) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ai, aj := m[keys[i]].Accuracy(), m[keys[j]].Accuracy()
		if ai != aj {
			if ascending {
				return ai < aj
			}
			return ai > aj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Clone returns a deep copy.
func (t *Tracker) Clone() *Tracker {
	c := &Tracker{
		Overall:    t.Overall,
		Categories: make(map[string]*Bucket, len(t.Categories)),
		Types:      make(map[string]*Bucket, len(t.Types)),
		LastActive: t.LastActive,

		LastAnswerID: t.LastAnswerID,
	}
	for k, b := range t.Categories {
		v := *b
		c.Categories[k] = &v
	}
	for k, b := range t.Types {
		v := *b
		c.Types[k] = &v
	}
	return c
}
