package campus

const (
	DefaultStartOfDay     = 8.0  // hours
	DefaultEndOfDay       = 16.0 // hours
	DefaultActivities     = 3
	DefaultActivityHours  = 2.0
	DefaultPauseHours     = 0.25
	DefaultMaxRoomDraws   = 20000 // consecutive rejected draws before giving up
	DefaultWalkSpeedMin   = 0.5   // map units/s
	DefaultWalkSpeedMax   = 1.5
	DefaultStepSeconds    = 1.0
	SpawnBandCount        = 4
	ActivityWeightCount   = 4
	lunchStartHour        = 12.0
	afternoonStartHour    = 14.0
	spawnProbabilityTotal = 100
)
