package loyalty

import (
	"errors"
	"fmt"
)

// ErrRewardNotFound is returned for unknown reward ids.
var ErrRewardNotFound = errors.New("reward not found")

// Reward is a catalogue item members can exchange points for.
type Reward struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Cost int64  `json:"cost"`
}

// Rewards is the redemption catalogue, cheapest first.
var Rewards = []Reward{
	{ID: "voucher-50k", Name: "Voucher Potongan 50rb", Cost: 50},
	{ID: "nasi-box-5", Name: "Gratis 5 Box Nasi Ayam", Cost: 100},
	{ID: "tumpeng-mini", Name: "Gratis Tumpeng Mini", Cost: 250},
	{ID: "voucher-1jt", Name: "Voucher Belanja 1 Juta", Cost: 500},
}

// RewardByID looks a reward up.
func RewardByID(id string) (Reward, error) {
	for _, r := range Rewards {
		if r.ID == id {
			return r, nil
		}
	}
	return Reward{}, fmt.Errorf("%w: %s", ErrRewardNotFound, id)
}

// Claimable returns the rewards a balance can pay for.
func Claimable(balance int64) []Reward {
	out := []Reward{}
	for _, r := range Rewards {
		if r.Cost <= balance {
			out = append(out, r)
		}
	}
	return out
}

// Summary is the loyalty view of a member's dashboard.
type Summary struct {
	Balance   int64    `json:"balance"`
	Spend     int64    `json:"lifetime_spend"`
	Progress  Progress `json:"tier"`
	Features  []string `json:"features"`
	Claimable []Reward `json:"claimable_rewards"`
}

// Summarize derives the dashboard view from balance, spend and order count.
func Summarize(balance, spend int64, orderCount int) Summary {
	p := DefaultTiers.Gap(spend)
	return Summary{
		Balance:   balance,
		Spend:     spend,
		Progress:  p,
		Features:  Unlocked(orderCount, spend, p.Current).Names(),
		Claimable: Claimable(balance),
	}
}
