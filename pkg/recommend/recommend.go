// Package recommend ranks people and items from a table of ratings, using
// weighted averages of the ratings given by similar people.
package recommend

import (
	"sort"

	"github.com/sanonone/kektorcluster/pkg/core/distance"
)

// Prefs maps a person to the ratings they gave, item -> rating.
// The same shape describes items rated by people after Transform.
type Prefs map[string]map[string]float64

// Similarity scores how alike two people of prefs are; higher is closer.
type Similarity func(prefs Prefs, p1, p2 string) float64

// Score is a ranked entry.
type Score struct {
	Name  string
	Value float64
}

// sharedItems returns the ratings of p1 and p2 on the items both rated,
// aligned by position.
func sharedItems(prefs Prefs, p1, p2 string) ([]float64, []float64) {
	var v1, v2 []float64
	for item, r1 := range prefs[p1] {
		if r2, ok := prefs[p2][item]; ok {
			v1 = append(v1, r1)
			v2 = append(v2, r2)
		}
	}
	return v1, v2
}

// SimDistance is 1 / (1 + sum of squared rating differences) over the shared
// items, or 0 when nothing is shared.
func SimDistance(prefs Prefs, p1, p2 string) float64 {
	v1, v2 := sharedItems(prefs, p1, p2)
	if len(v1) == 0 {
		return 0
	}
	sumSq, err := distance.SquaredEuclidean(v1, v2)
	if err != nil {
		return 0
	}
	return 1.0 / (1.0 + sumSq)
}

// SimPearson is the Pearson correlation of the ratings on the shared items,
// or 0 when nothing is shared.
func SimPearson(prefs Prefs, p1, p2 string) float64 {
	v1, v2 := sharedItems(prefs, p1, p2)
	if len(v1) == 0 {
		return 0
	}
	r, err := distance.PearsonCorrelation(v1, v2)
	if err != nil {
		return 0
	}
	return r
}

// rank sorts by value, highest first; equal values are ordered by name,
// also descending.
func rank(scores []Score) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Value != scores[j].Value {
			return scores[i].Value > scores[j].Value
		}
		return scores[i].Name > scores[j].Name
	})
}

// TopMatches returns the n entries of prefs most similar to person.
func TopMatches(prefs Prefs, person string, n int, sim Similarity) []Score {
	scores := make([]Score, 0, len(prefs))
	for other := range prefs {
		if other == person {
			continue
		}
		scores = append(scores, Score{Name: other, Value: sim(prefs, person, other)})
	}
	rank(scores)
	if n >= 0 && n < len(scores) {
		scores = scores[:n]
	}
	return scores
}

// Recommendations predicts ratings for the items person has not rated (or rated
// 0) as the similarity-weighted average of everyone else's ratings. People
// with a similarity of 0 or less are ignored.
func Recommendations(prefs Prefs, person string, sim Similarity) []Score {
	totals := make(map[string]float64)
	simSums := make(map[string]float64)

	for other, ratings := range prefs {
		if other == person {
			continue
		}
		s := sim(prefs, person, other)
		if s <= 0 {
			continue
		}
		for item, rating := range ratings {
			if mine, ok := prefs[person][item]; ok && mine != 0 {
				continue
			}
			totals[item] += rating * s
			simSums[item] += s
		}
	}

	rankings := make([]Score, 0, len(totals))
	for item, total := range totals {
		rankings = append(rankings, Score{Name: item, Value: total / simSums[item]})
	}
	rank(rankings)
	return rankings
}

// Transform swaps people and items: the result maps item -> person -> rating.
func Transform(prefs Prefs) Prefs {
	result := make(Prefs)
	for person, ratings := range prefs {
		for item, rating := range ratings {
			if result[item] == nil {
				result[item] = make(map[string]float64)
			}
			result[item][person] = rating
		}
	}
	return result
}

// SimilarItems lists, for every item, the n items most similar to it by
// SimDistance. Item similarities change slowly, so the result is meant to be
// computed ahead of time and reused with RecommendedItems.
func SimilarItems(prefs Prefs, n int) map[string][]Score {
	itemPrefs := Transform(prefs)
	result := make(map[string][]Score, len(itemPrefs))
	for item := range itemPrefs {
		result[item] = TopMatches(itemPrefs, item, n, SimDistance)
	}
	return result
}

// RecommendedItems predicts ratings for the items user has not rated using
// precomputed item similarities (see SimilarItems).
func RecommendedItems(prefs Prefs, itemMatch map[string][]Score, user string) []Score {
	userRatings := prefs[user]
	scores := make(map[string]float64)
	totalSim := make(map[string]float64)

	for item, rating := range userRatings {
		for _, similar := range itemMatch[item] {
			if _, rated := userRatings[similar.Name]; rated {
				continue
			}
			scores[similar.Name] += similar.Value * rating
			totalSim[similar.Name] += similar.Value
		}
	}

	rankings := make([]Score, 0, len(scores))
	for item, score := range scores {
		if totalSim[item] == 0 {
			continue
		}
		rankings = append(rankings, Score{Name: item, Value: score / totalSim[item]})
	}
	rank(rankings)
	return rankings
}
