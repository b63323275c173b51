package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"roadreport/internal/model"
)

func TestScoreRiskIsPure(t *testing.T) {
	a := ScoreRisk("the brakes failed on the highway")
	b := ScoreRisk("the brakes failed on the highway")
	assert.Equal(t, a, b)
}

func TestScoreRiskCalm(t *testing.T) {
	r := ScoreRisk("The brakes started grinding around 40 mph.")
	assert.Equal(t, 0, r.SuspicionScore)
	assert.Equal(t, model.RiskLow, r.RiskLevel)
}

func TestScoreRiskShoutingAlone(t *testing.T) {
	// All caps plus exclamation marks, but only a run of five: caps is the
	// only signal that fires.
	r := ScoreRisk("I WAS SO SCARED!!!!!")
	assert.Equal(t, 20, r.InputLength)
	assert.Equal(t, 2, r.SuspicionScore)
	assert.Equal(t, model.RiskLow, r.RiskLevel)
}

func TestScoreRiskVeryShort(t *testing.T) {
	r := ScoreRisk("ok")
	assert.Equal(t, 2, r.SuspicionScore)
	assert.Equal(t, model.RiskLow, r.RiskLevel)
}

func TestScoreRiskVeryLong(t *testing.T) {
	r := ScoreRisk(strings.Repeat("the car made a noise and ", 25))
	assert.Greater(t, r.InputLength, 500)
	assert.Equal(t, 3, r.SuspicionScore)
	assert.Equal(t, model.RiskMedium, r.RiskLevel)
}

func TestScoreRiskRepeatRun(t *testing.T) {
	assert.Equal(t, 0, ScoreRisk("it happened!!!!! honestly").SuspicionScore)
	assert.Equal(t, 3, ScoreRisk("it happened!!!!!! honestly").SuspicionScore)
}

func TestScoreRiskContradiction(t *testing.T) {
	r := ScoreRisk("there was no crash but the accident totaled the car")
	assert.Equal(t, 3, r.SuspicionScore)
	assert.Equal(t, model.RiskMedium, r.RiskLevel)
}

func TestScoreRiskProfanityCountedOnce(t *testing.T) {
	r := ScoreRisk("the shit brakes failed, what a crap design")
	assert.Equal(t, 3, r.SuspicionScore, "multiple profane words still score once")
}

func TestScoreRiskStacksToHigh(t *testing.T) {
	// caps +2, repeat run +3, profanity +3
	r := ScoreRisk("FUCK!!!!!!")
	assert.Equal(t, 8, r.SuspicionScore)
	assert.Equal(t, model.RiskHigh, r.RiskLevel)
}

func TestScoreRiskCountsRunes(t *testing.T) {
	r := ScoreRisk("héllo")
	assert.Equal(t, 5, r.InputLength)
	assert.Equal(t, 0, r.SuspicionScore)
}

func TestIsAllUpperNeedsCasedRune(t *testing.T) {
	assert.False(t, isAllUpper("1234 !!"), "digits and punctuation alone are not shouting")
	assert.True(t, isAllUpper("HELP 123"))
	assert.False(t, isAllUpper("Help"))
}
