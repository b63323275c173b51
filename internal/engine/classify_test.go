package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"roadreport/internal/model"
	"roadreport/internal/schema"
)

func feedbackSlot(t *testing.T, id model.SlotID) *schema.Slot {
	t.Helper()
	slot := schema.ForMode(model.ModeFeedback).SlotByID(id)
	if slot == nil {
		t.Fatalf("no slot %s in feedback schema", id)
	}
	return slot
}

func TestClassifyFillerIsNeverData(t *testing.T) {
	slot := feedbackSlot(t, model.SlotLikedMost)

	for _, text := range []string{"ok", "thanks", "Hello", "  cool  "} {
		isData, _ := Classify(slot, text)
		assert.False(t, isData, "%q must classify as conversation", text)
	}
}

func TestClassifyYearSlot(t *testing.T) {
	slot := feedbackSlot(t, model.SlotModelYear)

	isData, val := Classify(slot, "it's a 2019 I think")
	assert.True(t, isData)
	assert.Equal(t, "2019", val)

	isData, _ = Classify(slot, "pretty recent")
	assert.False(t, isData, "a year slot without a year token is conversation")
}

func TestClassifyYesNoSlot(t *testing.T) {
	slot := feedbackSlot(t, model.SlotWouldRecommend)

	isData, val := Classify(slot, "Yes")
	assert.True(t, isData)
	assert.Equal(t, "YES", val)

	isData, val = Classify(slot, "nope")
	assert.True(t, isData)
	assert.Equal(t, "NO", val)

	isData, _ = Classify(slot, "I'd tell my friends about it")
	assert.False(t, isData, "a descriptive sentence is not an explicit yes/no")
}

func TestClassifyCountSlot(t *testing.T) {
	slot := feedbackSlot(t, model.SlotSatisfaction)

	isData, val := Classify(slot, "4")
	assert.True(t, isData)
	assert.Equal(t, "4", val)

	isData, _ = Classify(slot, "x")
	assert.False(t, isData)
}

func TestClassifyTextSlotMinimumLength(t *testing.T) {
	slot := feedbackSlot(t, model.SlotUsageType)

	isData, _ := Classify(slot, "a")
	assert.False(t, isData)

	isData, val := Classify(slot, "  commuting  ")
	assert.True(t, isData)
	assert.Equal(t, "commuting", val)
}

func TestIsGreeting(t *testing.T) {
	assert.True(t, IsGreeting("Hello"))
	assert.True(t, IsGreeting("  hey  "))
	assert.True(t, IsGreeting("good morning"))
	assert.False(t, IsGreeting("howdy"))
	assert.False(t, IsGreeting("hello there, my car caught fire"))
}
