// Package filter narrows card sequences by text query and structured
// criteria. Nothing here mutates its input.
package filter

import (
	"fmt"
	"strings"
	"time"

	"corkboard/internal/board/models"
)

// Bucket is a coarse due-date class
type Bucket string

const (
	BucketAny     Bucket = ""
	BucketOverdue Bucket = "overdue"
	BucketToday   Bucket = "today"
	BucketWeek    Bucket = "week"
	BucketNone    Bucket = "none"
)

// Buckets lists the selectable buckets in display order
var Buckets = []Bucket{BucketOverdue, BucketToday, BucketWeek, BucketNone}

// Criteria holds the structured filters. Empty fields are transparent.
// Label and member sets match when a card has any of the selected ids;
// active criteria combine with AND.
type Criteria struct {
	LabelIDs  []string
	MemberIDs []string
	Due       Bucket
}

// Active reports whether any structured criterion would narrow the cards
func (c Criteria) Active() bool {
	return len(c.LabelIDs) > 0 || len(c.MemberIDs) > 0 || c.Due != BucketAny
}

// ParseBucket maps user input onto a bucket
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(strings.ToLower(strings.TrimSpace(s))); b {
	case BucketAny, BucketOverdue, BucketToday, BucketWeek, BucketNone:
		return b, nil
	default:
		return BucketAny, fmt.Errorf("unknown due filter %q (want overdue, today, week or none)", s)
	}
}

// StartOfDay returns local midnight of t's day
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Cards filters against the current time
func Cards(cards []models.Card, query string, criteria Criteria) []models.Card {
	return CardsAt(cards, query, criteria, time.Now())
}

// CardsAt returns the cards matching query and criteria, in input order.
// Due buckets are evaluated against the start of now's day.
func CardsAt(cards []models.Card, query string, criteria Criteria, now time.Time) []models.Card {
	m := newMatcher(query, criteria, now)
	out := make([]models.Card, 0, len(cards))
	for _, card := range cards {
		if m.match(card) {
			out = append(out, card)
		}
	}
	return out
}

// Board returns a copy of b with every list's cards filtered
func Board(b models.Board, query string, criteria Criteria, now time.Time) models.Board {
	out := b.Clone()
	for i := range out.Lists {
		out.Lists[i].Cards = CardsAt(out.Lists[i].Cards, query, criteria, now)
	}
	return out
}

// Indices returns the positions in cards that match, so callers holding the
// unfiltered sequence can map a visible row back to its real index
func Indices(cards []models.Card, query string, criteria Criteria, now time.Time) []int {
	m := newMatcher(query, criteria, now)
	var out []int
	for i, card := range cards {
		if m.match(card) {
			out = append(out, i)
		}
	}
	return out
}

type matcher struct {
	query    string
	criteria Criteria
	today    time.Time
}

func newMatcher(query string, criteria Criteria, now time.Time) matcher {
	return matcher{
		query:    strings.ToLower(query),
		criteria: criteria,
		today:    StartOfDay(now),
	}
}

func (m matcher) match(card models.Card) bool {
	if m.query != "" && !strings.Contains(strings.ToLower(card.Title), m.query) {
		return false
	}
	if len(m.criteria.LabelIDs) > 0 && !anyOf(m.criteria.LabelIDs, card.HasLabel) {
		return false
	}
	if len(m.criteria.MemberIDs) > 0 && !anyOf(m.criteria.MemberIDs, card.HasMember) {
		return false
	}
	if m.criteria.Due != BucketAny && !m.inBucket(card) {
		return false
	}
	return true
}

func (m matcher) inBucket(card models.Card) bool {
	if card.DueDate == nil {
		return m.criteria.Due == BucketNone
	}

	due := card.DueDate.In(m.today.Location())
	switch m.criteria.Due {
	case BucketOverdue:
		return due.Before(m.today)
	case BucketToday:
		return !due.Before(m.today) && due.Before(m.today.AddDate(0, 0, 1))
	case BucketWeek:
		return !due.Before(m.today) && due.Before(m.today.AddDate(0, 0, 7))
	case BucketNone:
		return false
	default:
		return true
	}
}

func anyOf(ids []string, has func(string) bool) bool {
	for _, id := range ids {
		if has(id) {
			return true
		}
	}
	return false
}
