package orders

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	orderIDPrefix = "ord"
	// FirstOrderID is handed out when the store holds no orders at all.
	FirstOrderID = "ord008"
	// baseSequence is used when orders exist but none has a parsable id.
	baseSequence = 7
)

// NextOrderID returns max(sequence)+1 over the existing ids, formatted as
// "ord" plus at least three digits. Gaps left by deleted orders are never
// reused and no collision check is made.
func NextOrderID(existing []Order) string {
	if len(existing) == 0 {
		return FirstOrderID
	}
	highest, found := 0, false
	for _, o := range existing {
		n, ok := Sequence(o.ID)
		if !ok {
			continue
		}
		if !found || n > highest {
			highest, found = n, true
		}
	}
	if !found {
		highest = baseSequence
	}
	return fmt.Sprintf("%s%03d", orderIDPrefix, highest+1)
}

// Sequence is the number behind an order id: "ord012" and "12" are both 12.
func Sequence(id string) (int, bool) {
	raw := strings.TrimPrefix(id, orderIDPrefix)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
