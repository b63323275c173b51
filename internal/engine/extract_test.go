package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadreport/internal/model"
	"roadreport/internal/schema"
)

func complaintSchema() *schema.Schema {
	return schema.ForMode(model.ModeComplaint)
}

func slotPtr(id model.SlotID) *model.SlotID { return &id }

func TestExtractOpportunisticMultiField(t *testing.T) {
	r := make(model.Record)
	u := Extract("TOYOTA CAMRY 2020 crash in Austin TX", r, slotPtr(model.SlotMake), complaintSchema())

	assert.Equal(t, Updates{
		model.SlotMake:      "Toyota",
		model.SlotModelYear: "2020",
		model.SlotState:     "TX",
		model.SlotCrash:     "YES",
	}, u)
}

func TestExtractDirectMapSkippedWhenRuleClaimsTarget(t *testing.T) {
	r := make(model.Record)
	u := Extract("my ford started smoking", r, slotPtr(model.SlotMake), complaintSchema())

	// The make rule claims Make, so the raw sentence must not overwrite it.
	assert.Equal(t, "Ford", u[model.SlotMake])
	assert.Equal(t, "YES", u[model.SlotFire])
}

func TestExtractDirectMapToCurrentSlot(t *testing.T) {
	r := model.Record{model.SlotMake: "Toyota", model.SlotModelYear: "2020"}
	u := Extract("Dallas 2021", r, slotPtr(model.SlotCity), complaintSchema())

	assert.Equal(t, "Dallas 2021", u[model.SlotCity])
	_, hasYear := u[model.SlotModelYear]
	assert.False(t, hasYear, "year rule never refires once the slot is filled")
}

func TestExtractSkipKeyword(t *testing.T) {
	r := make(model.Record)
	u := Extract("skip", r, slotPtr(model.SlotVIN), complaintSchema())

	assert.Equal(t, Updates{model.SlotVIN: "N/A"}, u)
}

func TestExtractYesNoDirectMap(t *testing.T) {
	sch := complaintSchema()
	r := make(model.Record)

	u := Extract("yeah", r, slotPtr(model.SlotFire), sch)
	assert.Equal(t, "YES", u[model.SlotFire])

	u = Extract("definitely not", r, slotPtr(model.SlotFire), sch)
	assert.Equal(t, "NO", u[model.SlotFire], "anything but an explicit yes token maps to NO")
}

func TestExtractStateDirectMapValidation(t *testing.T) {
	sch := complaintSchema()
	r := make(model.Record)

	u := Extract("ca", r, slotPtr(model.SlotState), sch)
	assert.Equal(t, Updates{model.SlotState: "CA"}, u)

	u = Extract("texas", r, slotPtr(model.SlotState), sch)
	assert.Empty(t, u, "a non-code answer to the state question yields no update")
}

func TestExtractStateTokenMustBeUpperInsideSentence(t *testing.T) {
	r := make(model.Record)
	u := Extract("it broke down in the rain", r, slotPtr(model.SlotDescription), complaintSchema())

	// "in" is a lowercase word, not Indiana.
	_, hasState := u[model.SlotState]
	assert.False(t, hasState)
	assert.Equal(t, "it broke down in the rain", u[model.SlotDescription])
}

func TestExtractYearRange(t *testing.T) {
	sch := complaintSchema()

	u := Extract("a 1985 pickup", make(model.Record), slotPtr(model.SlotDescription), sch)
	assert.Equal(t, "1985", u[model.SlotModelYear])

	u = Extract("a 1975 pickup", make(model.Record), slotPtr(model.SlotDescription), sch)
	_, hasYear := u[model.SlotModelYear]
	assert.False(t, hasYear, "1975 is outside the accepted model-year window")
}

func TestExtractKeywordFlagsAreAdditiveOnly(t *testing.T) {
	sch := complaintSchema()
	r := model.Record{model.SlotCrash: "NO"}

	u := Extract("there was a crash", r, slotPtr(model.SlotDescription), sch)
	_, hasCrash := u[model.SlotCrash]
	assert.False(t, hasCrash, "keyword rules never touch a slot that already has a value")
}

func TestExtractMakeOrderIsDeterministic(t *testing.T) {
	u := Extract("comparing my toyota against a honda", make(model.Record), nil, complaintSchema())
	assert.Equal(t, "Toyota", u[model.SlotMake], "first match in the ordered brand list wins")
}

func TestExtractEmptyMeansReprompt(t *testing.T) {
	r := make(model.Record)
	u := Extract("texas", r, slotPtr(model.SlotState), complaintSchema())
	require.Empty(t, u)
}
