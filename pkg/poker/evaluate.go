package poker

import (
	"fmt"
	"sort"
)

// Category ranks a hand class, 1 (best, Royal Flush) through 10 (worst,
// High Card), matching the wire/spec numbering rather than Go's natural
// zero-based enum ordering.
type Category int

const (
	CategoryRoyalFlush Category = iota + 1
	CategoryStraightFlush
	CategoryFourOfAKind
	CategoryFullHouse
	CategoryFlush
	CategoryStraight
	CategoryThreeOfAKind
	CategoryTwoPair
	CategoryPair
	CategoryHighCard
)

var categoryNames = map[Category]string{
	CategoryRoyalFlush:    "Royal Flush",
	CategoryStraightFlush: "Straight Flush",
	CategoryFourOfAKind:   "Four of a Kind",
	CategoryFullHouse:     "Full House",
	CategoryFlush:         "Flush",
	CategoryStraight:      "Straight",
	CategoryThreeOfAKind:  "Three of a Kind",
	CategoryTwoPair:       "Two Pair",
	CategoryPair:          "Pair",
	CategoryHighCard:      "High Card",
}

func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return "Unknown"
}

// Result is the outcome of evaluating a 5-7 card hand.
type Result struct {
	Category Category
	// Tiebreak is compared lexicographically, higher first, to break ties
	// within a category. Values are Rank integers (wheel straights use 5,
	// not 14, as their high card).
	Tiebreak []int
	Name     string
	BestFive []Card
}

// ErrInsufficientCards is returned when fewer than 5 cards are supplied.
var ErrInsufficientCards = fmt.Errorf("poker: insufficient cards, need at least 5")

// Evaluate returns the best five-card hand found among 5-7 distinct cards.
// It is a pure function of its input multiset: the same cards in any
// order produce an identical Result.
func Evaluate(cards []Card) (Result, error) {
	if len(cards) < 5 {
		return Result{}, ErrInsufficientCards
	}
	// Canonical order first, so every later choice of card is independent of
	// the order the caller supplied.
	cards = sortedDesc(cards)

	bySuit := make(map[Suit][]Card)
	byRank := make(map[Rank][]Card)
	for _, c := range cards {
		bySuit[c.Suit] = append(bySuit[c.Suit], c)
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}

	if flushCards, ok := flushSuit(bySuit); ok {
		if res, ok := straightFlush(flushCards); ok {
			return res, nil
		}
		return bestFlush(flushCards), nil
	}

	if res, ok := fourOfAKind(byRank); ok {
		return res, nil
	}
	if res, ok := fullHouse(byRank); ok {
		return res, nil
	}
	if res, ok := straight(cards); ok {
		return res, nil
	}
	if res, ok := threeOfAKind(byRank); ok {
		return res, nil
	}
	if res, ok := twoPair(byRank); ok {
		return res, nil
	}
	if res, ok := onePair(byRank); ok {
		return res, nil
	}
	return highCard(cards), nil
}

// Compare returns 1 if a beats b, -1 if b beats a, 0 on an exact tie.
// compare(a,b) < 0 implies compare(b,a) > 0, and compare(a,a) == 0.
func Compare(a, b Result) int {
	if a.Category != b.Category {
		if a.Category < b.Category { // lower category number is better
			return 1
		}
		return -1
	}
	for i := 0; i < len(a.Tiebreak) && i < len(b.Tiebreak); i++ {
		if a.Tiebreak[i] != b.Tiebreak[i] {
			if a.Tiebreak[i] > b.Tiebreak[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

func sortedDesc(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank > out[j].Rank
		}
		return out[i].Suit > out[j].Suit
	})
	return out
}

func ranksOf(cards []Card) []int {
	out := make([]int, len(cards))
	for i, c := range cards {
		out[i] = int(c.Rank)
	}
	return out
}

func flushSuit(bySuit map[Suit][]Card) ([]Card, bool) {
	for _, cards := range bySuit {
		if len(cards) >= 5 {
			return sortedDesc(cards), true
		}
	}
	return nil, false
}

// straightRankSequence finds the highest straight (5 consecutive distinct
// ranks) among the given cards, returning the high rank (5 for the wheel)
// and the five cards forming it, highest-to-lowest excluding the duplicate
// ace-as-one. Cards must be deduplicated by rank already if flush-scoped.
func straightRankSequence(cards []Card) (highRank int, hand []Card, ok bool) {
	byRank := make(map[int]Card)
	for _, c := range cards {
		if _, exists := byRank[int(c.Rank)]; !exists {
			byRank[int(c.Rank)] = c
		}
	}
	distinct := make([]int, 0, len(byRank))
	for r := range byRank {
		distinct = append(distinct, r)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(distinct)))

	hasAce := false
	for _, r := range distinct {
		if r == int(RankA) {
			hasAce = true
			break
		}
	}
	if hasAce {
		distinct = append(distinct, 1) // wheel: ace plays low
	}

	for i := 0; i+4 < len(distinct); i++ {
		if distinct[i]-distinct[i+4] == 4 {
			consecutive := true
			for k := 0; k < 4; k++ {
				if distinct[i+k]-distinct[i+k+1] != 1 {
					consecutive = false
					break
				}
			}
			if consecutive {
				high := distinct[i]
				hand = make([]Card, 0, 5)
				for k := 0; k < 5; k++ {
					rankVal := distinct[i+k]
					if rankVal == 1 {
						rankVal = int(RankA)
					}
					hand = append(hand, byRank[rankVal])
				}
				return high, hand, true
			}
		}
	}
	return 0, nil, false
}

func straightFlush(flushCardsDesc []Card) (Result, bool) {
	high, hand, ok := straightRankSequence(flushCardsDesc)
	if !ok {
		return Result{}, false
	}
	cat := CategoryStraightFlush
	if high == int(RankA) {
		cat = CategoryRoyalFlush
	}
	return Result{Category: cat, Tiebreak: []int{high}, Name: cat.String(), BestFive: hand}, true
}

func bestFlush(flushCardsDesc []Card) Result {
	best := flushCardsDesc[:5]
	return Result{
		Category: CategoryFlush,
		Tiebreak: ranksOf(best),
		Name:     CategoryFlush.String(),
		BestFive: best,
	}
}

func rankCounts(byRank map[Rank][]Card) map[Rank]int {
	counts := make(map[Rank]int, len(byRank))
	for r, cards := range byRank {
		counts[r] = len(cards)
	}
	return counts
}

func ranksWithCount(counts map[Rank]int, n int) []Rank {
	var out []Rank
	for r, c := range counts {
		if c == n {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

func ranksWithCountAtLeast(counts map[Rank]int, n int) []Rank {
	var out []Rank
	for r, c := range counts {
		if c >= n {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

func kickersExcluding(byRank map[Rank][]Card, exclude map[Rank]bool, need int) []Card {
	var pool []Card
	for r, cards := range byRank {
		if exclude[r] {
			continue
		}
		pool = append(pool, cards...)
	}
	pool = sortedDesc(pool)
	if len(pool) > need {
		pool = pool[:need]
	}
	return pool
}

func fourOfAKind(byRank map[Rank][]Card) (Result, bool) {
	counts := rankCounts(byRank)
	quads := ranksWithCount(counts, 4)
	if len(quads) == 0 {
		return Result{}, false
	}
	quadRank := quads[0]
	kicker := kickersExcluding(byRank, map[Rank]bool{quadRank: true}, 1)
	hand := append([]Card{}, byRank[quadRank]...)
	hand = append(hand, kicker...)
	tiebreak := []int{int(quadRank)}
	if len(kicker) > 0 {
		tiebreak = append(tiebreak, int(kicker[0].Rank))
	}
	return Result{Category: CategoryFourOfAKind, Tiebreak: tiebreak, Name: CategoryFourOfAKind.String(), BestFive: hand}, true
}

func fullHouse(byRank map[Rank][]Card) (Result, bool) {
	counts := rankCounts(byRank)
	trips := ranksWithCountAtLeast(counts, 3)
	if len(trips) == 0 {
		return Result{}, false
	}
	tripRank := trips[0]

	var pairRank Rank
	found := false
	// A second trip-rank can serve as the pair (use two of its three cards).
	for _, r := range ranksWithCountAtLeast(counts, 2) {
		if r == tripRank {
			continue
		}
		pairRank = r
		found = true
		break
	}
	if !found {
		return Result{}, false
	}

	hand := append([]Card{}, byRank[tripRank][:3]...)
	hand = append(hand, byRank[pairRank][:2]...)
	return Result{
		Category: CategoryFullHouse,
		Tiebreak: []int{int(tripRank), int(pairRank)},
		Name:     CategoryFullHouse.String(),
		BestFive: hand,
	}, true
}

func straight(cards []Card) (Result, bool) {
	high, hand, ok := straightRankSequence(cards)
	if !ok {
		return Result{}, false
	}
	return Result{Category: CategoryStraight, Tiebreak: []int{high}, Name: CategoryStraight.String(), BestFive: hand}, true
}

func threeOfAKind(byRank map[Rank][]Card) (Result, bool) {
	counts := rankCounts(byRank)
	trips := ranksWithCount(counts, 3)
	if len(trips) == 0 {
		return Result{}, false
	}
	tripRank := trips[0]
	kickers := kickersExcluding(byRank, map[Rank]bool{tripRank: true}, 2)
	hand := append([]Card{}, byRank[tripRank][:3]...)
	hand = append(hand, kickers...)
	tiebreak := []int{int(tripRank)}
	for _, k := range kickers {
		tiebreak = append(tiebreak, int(k.Rank))
	}
	return Result{Category: CategoryThreeOfAKind, Tiebreak: tiebreak, Name: CategoryThreeOfAKind.String(), BestFive: hand}, true
}

func twoPair(byRank map[Rank][]Card) (Result, bool) {
	counts := rankCounts(byRank)
	pairs := ranksWithCount(counts, 2)
	// A rank with 3+ copies also contributes a pair if needed (shouldn't
	// reach here since fullHouse/threeOfAKind are checked first, but stay
	// defensive for direct unit tests of this helper).
	for r, c := range counts {
		if c >= 2 {
			already := false
			for _, p := range pairs {
				if p == r {
					already = true
				}
			}
			if !already {
				pairs = append(pairs, r)
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i] > pairs[j] })
	if len(pairs) < 2 {
		return Result{}, false
	}
	top, second := pairs[0], pairs[1]
	kicker := kickersExcluding(byRank, map[Rank]bool{top: true, second: true}, 1)
	hand := append([]Card{}, byRank[top][:2]...)
	hand = append(hand, byRank[second][:2]...)
	hand = append(hand, kicker...)
	tiebreak := []int{int(top), int(second)}
	if len(kicker) > 0 {
		tiebreak = append(tiebreak, int(kicker[0].Rank))
	}
	return Result{Category: CategoryTwoPair, Tiebreak: tiebreak, Name: CategoryTwoPair.String(), BestFive: hand}, true
}

func onePair(byRank map[Rank][]Card) (Result, bool) {
	counts := rankCounts(byRank)
	pairs := ranksWithCount(counts, 2)
	if len(pairs) == 0 {
		return Result{}, false
	}
	pairRank := pairs[0]
	kickers := kickersExcluding(byRank, map[Rank]bool{pairRank: true}, 3)
	hand := append([]Card{}, byRank[pairRank][:2]...)
	hand = append(hand, kickers...)
	tiebreak := []int{int(pairRank)}
	for _, k := range kickers {
		tiebreak = append(tiebreak, int(k.Rank))
	}
	return Result{Category: CategoryPair, Tiebreak: tiebreak, Name: CategoryPair.String(), BestFive: hand}, true
}

func highCard(cards []Card) Result {
	sorted := sortedDesc(cards)
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	return Result{
		Category: CategoryHighCard,
		Tiebreak: ranksOf(sorted),
		Name:     CategoryHighCard.String(),
		BestFive: sorted,
	}
}
