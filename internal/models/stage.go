package models

import (
	"encoding/json"
	"fmt"
)

// Stage gates which part of the assessment flow is active. The numeric
// order is the only legal forward-progression order.
type Stage int

const (
	StageIdle Stage = iota
	StageSchemeSelected
	StageProfileValidation
	StageRuleEvaluation
	StageAIExplanation
	StageFinalResult
)

var stageNames = map[Stage]string{
	StageIdle:              "IDLE",
	StageSchemeSelected:    "SCHEME_SELECTED",
	StageProfileValidation: "PROFILE_VALIDATION",
	StageRuleEvaluation:    "RULE_EVALUATION",
	StageAIExplanation:     "AI_EXPLANATION",
	StageFinalResult:       "FINAL_RESULT",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for stage, n := range stageNames {
		if n == name {
			*s = stage
			return nil
		}
	}
	return fmt.Errorf("unknown stage %q", name)
}
