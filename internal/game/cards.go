package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Card is the wire form of a single card. The server owns the deck; the
// client only ever sees card codes such as "As" or "Th" and passes them
// through to display and to the remote hand evaluator.
type Card struct {
	Code string `json:"code"`
}

const (
	cardRanks = "23456789TJQKA"
	cardSuits = "shdc"
)

func ParseCard(code string) (Card, error) {
	if len(code) != 2 ||
		!strings.ContainsRune(cardRanks, rune(code[0])) ||
		!strings.ContainsRune(cardSuits, rune(code[1])) {
		return Card{}, fmt.Errorf("invalid card code %q", code)
	}
	return Card{Code: code}, nil
}

func (c Card) String() string { return c.Code }

// UnmarshalJSON accepts both the object form {"code":"As"} and a bare
// string "As"; the server has used both shapes for card lists.
func (c *Card) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Code = s
		return nil
	}
	var obj struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	c.Code = obj.Code
	return nil
}

// CardCodes flattens a card list for display or for the hand evaluator query.
func CardCodes(cards []Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Code)
	}
	return out
}
