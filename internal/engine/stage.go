package engine

// Stage is a step of the two-stage filter pipeline.
//
//	StageDeclarative → StageExtended → done
//
// No stage is revisited. An error in either stage aborts the call.
type Stage int

const (
	// StageDeclarative applies the merged attribute map.
	StageDeclarative Stage = iota + 1

	// StageExtended runs the extension hook.
	StageExtended
)

// String returns the stage name used in logs and errors.
func (s Stage) String() string {
	switch s {
	case StageDeclarative:
		return "declarative"
	case StageExtended:
		return "extended"
	default:
		return "unknown"
	}
}
