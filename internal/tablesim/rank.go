package tablesim

import (
	"sort"
	"strings"

	"holdem-client/internal/game"
)

const rankOrder = "23456789TJQKA"

var categoryNames = []string{
	"High Card", "Pair", "Two Pair", "Three of a Kind", "Straight",
	"Flush", "Full House", "Four of a Kind", "Straight Flush",
}

type handRank struct {
	category int
	ranks    []int
}

func (h handRank) betterThan(o handRank) bool {
	if h.category != o.category {
		return h.category > o.category
	}
	for i := 0; i < len(h.ranks) && i < len(o.ranks); i++ {
		if h.ranks[i] != o.ranks[i] {
			return h.ranks[i] > o.ranks[i]
		}
	}
	return false
}

// evaluate finds the best five-card hand across the board and hole cards.
// The value is category-major so any hand of a higher category outranks any
// hand of a lower one.
func evaluate(tableCards, playerCards []game.Card) (int, string, []game.Card) {
	all := append(append([]game.Card{}, tableCards...), playerCards...)
	if len(all) < 5 {
		return 0, "No Cards", nil
	}

	best := handRank{category: -1}
	var bestCards []game.Card
	pick := make([]game.Card, 5)
	var choose func(start, depth int)
	choose = func(start, depth int) {
		if depth == 5 {
			h := eval5(pick)
			if h.betterThan(best) {
				best = h
				bestCards = append([]game.Card(nil), pick...)
			}
			return
		}
		for i := start; i <= len(all)-(5-depth); i++ {
			pick[depth] = all[i]
			choose(i+1, depth+1)
		}
	}
	choose(0, 0)

	value := best.category*1000 + best.ranks[0]
	return value, categoryNames[best.category], bestCards
}

func eval5(cards []game.Card) handRank {
	counts := map[int]int{}
	suits := map[byte]int{}
	ranks := make([]int, 0, 5)
	for _, c := range cards {
		r := strings.IndexByte(rankOrder, c.Code[0])
		counts[r]++
		suits[c.Code[1]]++
		ranks = append(ranks, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	isFlush := len(suits) == 1
	isStraight, highStraight := straightHigh(ranks)
	if isFlush && isStraight {
		return handRank{category: 8, ranks: []int{highStraight}}
	}

	type rc struct {
		rank  int
		count int
	}
	groups := make([]rc, 0, len(counts))
	for r, c := range counts {
		groups = append(groups, rc{rank: r, count: c})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	switch {
	case groups[0].count == 4:
		return handRank{category: 7, ranks: []int{groups[0].rank, groups[1].rank}}
	case groups[0].count == 3 && groups[1].count == 2:
		return handRank{category: 6, ranks: []int{groups[0].rank, groups[1].rank}}
	case isFlush:
		return handRank{category: 5, ranks: ranks}
	case isStraight:
		return handRank{category: 4, ranks: []int{highStraight}}
	case groups[0].count == 3:
		return handRank{category: 3, ranks: []int{groups[0].rank, groups[1].rank, groups[2].rank}}
	case groups[0].count == 2 && groups[1].count == 2:
		return handRank{category: 2, ranks: []int{groups[0].rank, groups[1].rank, groups[2].rank}}
	case groups[0].count == 2:
		return handRank{category: 1, ranks: []int{groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank}}
	default:
		return handRank{category: 0, ranks: ranks}
	}
}

func straightHigh(ranks []int) (bool, int) {
	for i := 0; i < 4; i++ {
		if ranks[i] != ranks[i+1]+1 {
			// Wheel: A,5,4,3,2 sorts as A first.
			if i == 0 && ranks[0] == 12 && ranks[1] == 3 {
				wheel := true
				for j := 1; j < 4; j++ {
					if ranks[j] != ranks[j+1]+1 {
						wheel = false
						break
					}
				}
				if wheel {
					return true, 3
				}
			}
			return false, 0
		}
	}
	return true, ranks[0]
}
