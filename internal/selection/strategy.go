package selection

import (
	"math/rand"
	"time"

	"github.com/yuxuan/evalagent/internal/types"
)

// Strategy names an answer-selection policy.
type Strategy string

// Supported strategies. Any other name fails with UnknownStrategyError.
const (
	// StrategyBest picks the highest-scored option of every question.
	StrategyBest Strategy = "best"
	// StrategyRandom picks uniformly among the top three options (or among
	// all options when a question offers fewer than three). Staying inside
	// the top tiers keeps the answers plausible while still varying.
	StrategyRandom Strategy = "random"
	// StrategyWorstPassing picks the third-highest option, falling back to
	// the lowest when a question offers fewer than three. With the service's
	// coarse-to-fine option ordering, rank three is the borderline tier that
	// still counts as passing.
	StrategyWorstPassing Strategy = "worst_passing"
	// StrategyWorst picks the lowest-scored option of every question.
	StrategyWorst Strategy = "worst"
)

// randomPool is how many top-ranked options StrategyRandom draws from.
const randomPool = 3

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case StrategyBest, StrategyRandom, StrategyWorstPassing, StrategyWorst:
		return s, nil
	default:
		return "", &UnknownStrategyError{Name: name}
	}
}

// Select produces one answer per choice question, in question order. A
// question without options is left unanswered (nil entry). The rng is only
// consulted by StrategyRandom and may be seeded by tests; when nil, a
// time-seeded source is used.
func Select(strategy Strategy, questions []types.Question, rng *rand.Rand) (types.AnswerSet, error) {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	answers := make(types.AnswerSet, len(questions))
	for i := range questions {
		options := questions[i].Options
		if len(options) == 0 {
			continue
		}
		switch strategy {
		case StrategyBest:
			answers[i] = &options[0]
		case StrategyRandom:
			pool := len(options)
			if pool > randomPool {
				pool = randomPool
			}
			answers[i] = &options[rng.Intn(pool)]
		case StrategyWorstPassing:
			if len(options) >= randomPool {
				answers[i] = &options[2]
			} else {
				answers[i] = &options[len(options)-1]
			}
		case StrategyWorst:
			answers[i] = &options[len(options)-1]
		}
	}

	return answers, nil
}
