package progress

import "rapbattle-quiz-service/internal/domain"

// levelTable maps cumulative point thresholds to progression tiers.
var levelTable = []struct {
	threshold int
	name      string
}{
	{0, "Rookie"},
	{100, "Amateur"},
	{250, "Connaisseur"},
	{500, "Expert"},
	{1000, "Maître"},
	{2000, "Légende"},
}

// LevelForPoints resolves the tier for a point total. PointsToNext is
// the distance to the next threshold, 0 at the final tier.
func LevelForPoints(points int) domain.Level {
	level := domain.Level{Level: 1, Name: levelTable[0].name}
	for i, tier := range levelTable {
		if points < tier.threshold {
			break
		}
		level = domain.Level{Level: i + 1, Name: tier.name}
		if i+1 < len(levelTable) {
			level.PointsToNext = levelTable[i+1].threshold - points
		}
	}
	return level
}
