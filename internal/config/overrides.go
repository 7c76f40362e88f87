package config

// Overrides holds optional command-line values applied after the file and
// the environment.
type Overrides struct {
	RunSteps   *float64
	Seed       *int64
	Hosts      *int
	Activities *int
	Verbose    *bool
	LogLevel   *string
	Addr       *string
	DBPath     *string
}

// Apply returns s with every set override written over it.
func (o Overrides) Apply(s Settings) Settings {
	if o.RunSteps != nil {
		s.Scenario.EndTime = *o.RunSteps
	}
	if o.Seed != nil {
		s.Timetable.RngSeed = *o.Seed
	}
	if o.Hosts != nil {
		s.Scenario.Groups = []GroupSettings{{ID: "cli", NrofHosts: *o.Hosts}}
	}
	if o.Activities != nil {
		s.Timetable.Activities = *o.Activities
	}
	if o.Verbose != nil {
		s.Timetable.Verbose = *o.Verbose
	}
	if o.LogLevel != nil {
		s.Log.Level = *o.LogLevel
	}
	if o.Addr != nil {
		s.Server.Addr = *o.Addr
	}
	if o.DBPath != nil {
		s.Store.Path = *o.DBPath
	}
	return Sanitize(s)
}
