package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveSeverity_BestEffortDemotesWarnings(t *testing.T) {
	assert.Equal(t, Info, ResolveSeverity(TypeWidening, Warning, BestEffort))
	assert.Equal(t, Error, ResolveSeverity(WriteErrorPolicyConflict, Error, BestEffort))
}

func TestResolveSeverity_StrictPromotesLWWAndInit(t *testing.T) {
	assert.Equal(t, Error, ResolveSeverity(WriteLWWAmbiguous, Warning, Strict))
	assert.Equal(t, Error, ResolveSeverity(InitMissingVariable, Warning, Strict))
	assert.Equal(t, Error, ResolveSeverity(InitNoHappensBefore, Warning, Strict))
}

func TestResolveSeverity_PragmaticKeepsBase(t *testing.T) {
	assert.Equal(t, Warning, ResolveSeverity(WriteLWWAmbiguous, Warning, Pragmatic))
}

func TestReport_HasErrors(t *testing.T) {
	r := NewReport(Pragmatic, nil)
	assert.False(t, r.HasErrors())
	r.Add(StructUnconnectedInput, Error, "input x unconnected")
	assert.True(t, r.HasErrors())
	assert.Len(t, r.ByCode(StructUnconnectedInput), 1)
}

func TestReport_ForwardsToDownstreamSink(t *testing.T) {
	buf := NewBufferedSink()
	r := NewReport(BestEffort, buf)
	r.Add(TypeWidening, Warning, "int widened to float")
	assert.Len(t, buf.Diagnostics(), 1)
	assert.Equal(t, Info, buf.Diagnostics()[0].Severity)
}
