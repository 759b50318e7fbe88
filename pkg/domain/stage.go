package domain

// Stage is a state of the run state machine.
type Stage int

const (
	StageStart Stage = iota
	StageConfigurationResolved
	StagePluginsResolved
	StageParsed
	StageStringified
	StageSerialized
	StageOutputWritten
	StageDone
	StageFailed
)

var stageNames = [...]string{
	StageStart:                 "start",
	StageConfigurationResolved: "configuration_resolved",
	StagePluginsResolved:       "plugins_resolved",
	StageParsed:                "parsed",
	StageStringified:           "stringified",
	StageSerialized:            "serialized",
	StageOutputWritten:         "output_written",
	StageDone:                  "done",
	StageFailed:                "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}
