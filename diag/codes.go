package diag

// Code is a stable diagnostic identifier (§6 External Interfaces).
type Code string

const (
	// Structural & type pass (§4.4)
	StructUnconnectedInput Code = "STRUCT001"
	StructFanInViolation   Code = "STRUCT002"
	TypeWidening           Code = "TYPE001"

	// Write-conflict pass (§4.5)
	WriteErrorPolicyConflict Code = "WRITE001"
	WriteLWWAmbiguous        Code = "WRITE002"

	// Causality pass (§4.6)
	CausNonCoreInCycle    Code = "CAUS001"
	CausExtNotMonotone    Code = "CAUS002"
	CausNonConstructive   Code = "CAUS003"
	CausNotEligible       Code = "CAUS004"

	// Non-Zeno rank check (§4.6)
	ZenoMissingRank Code = "ZEN001"

	// Initialization pass (§4.7)
	InitMissingVariable     Code = "INIT001"
	InitMissingDelayDefault Code = "INIT002"
	InitNoHappensBefore     Code = "INIT003"

	// SDF pass (§4.8)
	SDFInconsistent Code = "SDF001"

	// Continuous wrapper check (§4.9)
	ContinuousMissingPort     Code = "CT001"
	ContinuousBadType         Code = "CT002"
	ContinuousMissingDefault  Code = "CT003"
)
