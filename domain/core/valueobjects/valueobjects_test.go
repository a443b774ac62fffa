package valueobjects

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

func TestParseNodeKind(t *testing.T) {
	tests := []struct {
		in      string
		want    NodeKind
		wantErr bool
	}{
		{in: "claimNode", want: KindClaim},
		{in: "factNode", want: KindFact},
		{in: "evidenceNode", want: KindEvidence},
		{in: "lawNode", want: KindLaw},
		{in: "claim", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNodeKind(tt.in)
			if tt.wantErr {
				assert.True(t, pkgerrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEdgeType_UnknownIsDefault(t *testing.T) {
	assert.Equal(t, EdgeSupports, ParseEdgeType("supports"))
	assert.Equal(t, EdgeContradicts, ParseEdgeType("contradicts"))
	assert.Equal(t, EdgeRelated, ParseEdgeType("related"))
	assert.Equal(t, EdgeDefault, ParseEdgeType("smoothstep"))
	assert.Equal(t, EdgeDefault, ParseEdgeType(""))
}

func TestDerivedEdgeID(t *testing.T) {
	assert.Equal(t, EdgeID("eA-B"), DerivedEdgeID("A", "B"))
}

func TestParseIDs(t *testing.T) {
	_, err := ParseNodeID("  ")
	assert.Error(t, err)

	_, err = ParseCaseID("case/1")
	assert.Error(t, err)

	id, err := ParseCaseID(" case-1 ")
	require.NoError(t, err)
	assert.Equal(t, CaseID("case-1"), id)
}

func TestViewport(t *testing.T) {
	_, err := NewViewport(0, 0, 0)
	assert.Error(t, err)

	_, err = NewPosition(math.NaN(), 1)
	assert.Error(t, err)

	assert.Equal(t, DefaultViewport(), Viewport{Zoom: 0}.Normalize())
	assert.Equal(t, Position{X: 3, Y: -1}, Position{X: 1, Y: 1}.Translate(2, -2))
}
