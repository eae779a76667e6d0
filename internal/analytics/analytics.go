// Package analytics derives display statistics from graded submissions.
// Everything here is pure: no I/O, no logging, and input order never
// changes a result.
package analytics

import (
	"math"
	"sort"
	"strconv"

	"github.com/livetest-app/livetest/internal/models"
)

// Summary holds the headline grade statistics for a test, each rounded to
// two decimal places.
type Summary struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// Bucket is one fixed-width histogram bin, labelled by its lower bound.
type Bucket struct {
	LowerBound int `json:"grade"`
	Count      int `json:"count"`
}

// MissRate reports how often a question was answered incorrectly across all
// submissions that attempted it.
type MissRate struct {
	Question int     `json:"question"`
	Missed   int     `json:"missed"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percentage"`
}

// Summarize computes low/high/mean over the grades. The second return is
// false for an empty input: the mean is undefined there and callers render
// "N/A" rather than a fabricated zero.
func Summarize(grades []float64) (Summary, bool) {
	if len(grades) == 0 {
		return Summary{}, false
	}

	low := grades[0]
	high := grades[0]
	sum := 0.0
	for _, grade := range grades {
		sum += grade
		if grade < low {
			low = grade
		}
		if grade > high {
			high = grade
		}
	}

	return Summary{
		Low:   round2(low),
		High:  round2(high),
		Avg:   round2(sum / float64(len(grades))),
		Count: len(grades),
	}, true
}

// Histogram partitions grades into eleven bins with lower bounds 0..100 in
// steps of ten. A grade lands in the bin with the largest lower bound not
// exceeding it; the final bin also collects anything at or above 100.
// Bin counts always sum to len(grades).
func Histogram(grades []float64) []Bucket {
	buckets := make([]Bucket, 11)
	for i := range buckets {
		buckets[i].LowerBound = i * 10
	}

	for _, grade := range grades {
		idx := int(math.Floor(grade / 10))
		if idx < 0 {
			idx = 0
		}
		if idx > 10 {
			idx = 10
		}
		buckets[idx].Count++
	}

	return buckets
}

// Grades extracts the grade column from a submission list.
func Grades(submissions []models.Submission) []float64 {
	grades := make([]float64, 0, len(submissions))
	for _, submission := range submissions {
		grades = append(grades, submission.Grade)
	}
	return grades
}

// MissRates accumulates attempts and misses per question across the given
// answer sets and returns the miss percentage for every question that was
// attempted at least once, ordered by question number.
func MissRates(sets []models.AnswerSet) []MissRate {
	type tally struct {
		total  int
		missed int
	}
	stats := make(map[int]*tally)

	for _, set := range sets {
		for key, answer := range set {
			question, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			entry := stats[question]
			if entry == nil {
				entry = &tally{}
				stats[question] = entry
			}
			entry.total++
			if !answer.Correct {
				entry.missed++
			}
		}
	}

	rates := make([]MissRate, 0, len(stats))
	for question, entry := range stats {
		rates = append(rates, MissRate{
			Question: question,
			Missed:   entry.missed,
			Total:    entry.total,
			Percent:  round2(float64(entry.missed) / float64(entry.total) * 100),
		})
	}

	sort.Slice(rates, func(i, j int) bool { return rates[i].Question < rates[j].Question })

	return rates
}

// round2 rounds half away from zero on the scaled value, matching
// round(x*100)/100.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
