// Package economy implements the Economy Transducer: it converts review
// outcomes and level-up events into ledger-style currency deltas and
// recomputes the user level.
package economy

// levelCost is the experience required to advance from level n to n+1
// 100 + (n-1)*50.
func levelCost(n int) int64 {
	return int64(100 + (n-1)*50)
}

// LevelFor computes (level, xpInCurrentLevel, xpToNextLevel) from
// cumulative total XP by peeling off level costs in order.
func LevelFor(totalXP int64) (level int, xpInCurrentLevel int64, xpToNextLevel int64) {
	level = 1
	remaining := totalXP
	for {
		cost := levelCost(level)
		if remaining < cost {
			return level, remaining, cost
		}
		remaining -= cost
		level++
	}
}

// LevelEnergy carries the economy's level-up Energy reward table.
type LevelEnergy struct {
	ByLevel map[int]int
	Default int
}

func DefaultLevelEnergy() LevelEnergy {
	return LevelEnergy{
		ByLevel: map[int]int{2: 30, 3: 50, 4: 75, 5: 100},
		Default: 125,
	}
}

func (e LevelEnergy) For(level int) int {
	if amount, ok := e.ByLevel[level]; ok {
		return amount
	}
	return e.Default
}

// energyForCrossing sums the energy grant for every level newly crossed
// going from fromLevel (exclusive) to toLevel (inclusive): if multiple
// levels are crossed in a single Sparks grant, each level's Energy is
// granted.
func (e LevelEnergy) energyForCrossing(fromLevel, toLevel int) (total int, perLevel map[int]int) {
	perLevel = map[int]int{}
	for lvl := fromLevel + 1; lvl <= toLevel; lvl++ {
		amount := e.For(lvl)
		perLevel[lvl] = amount
		total += amount
	}
	return total, perLevel
}
