package blueprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBlueprint() *Blueprint {
	return &Blueprint{
		Components: []Component{
			{
				ID: "alpha", Type: TypeFunction, Name: "alpha",
				Width: DefaultWidth, Height: DefaultHeight,
				Inputs: DefaultInputs(), Outputs: DefaultOutputs(),
			},
			{
				ID: "beta", Type: TypeFunction, Name: "beta",
				Width: DefaultWidth, Height: DefaultHeight,
				Inputs: DefaultInputs(), Outputs: DefaultOutputs(),
			},
		},
		Connections: []Connection{
			{From: "alpha-out", To: "beta-in"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, Validate(validBlueprint()))
}

func TestValidate_Nil(t *testing.T) {
	assert.Error(t, Validate(nil))
}

func TestValidate_Method(t *testing.T) {
	require.NoError(t, validBlueprint().Validate())

	bp := validBlueprint()
	bp.Components[1].ID = "alpha"
	assert.Error(t, bp.Validate())
}

func TestValidate_DuplicateID(t *testing.T) {
	bp := validBlueprint()
	bp.Components[1].ID = "alpha"
	err := Validate(bp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate component id")
}

func TestValidate_InvalidType(t *testing.T) {
	bp := validBlueprint()
	bp.Components[0].Type = "widget"
	assert.Error(t, Validate(bp))
}

func TestValidate_DanglingConnection(t *testing.T) {
	bp := validBlueprint()
	bp.Connections = append(bp.Connections, Connection{From: "gamma-out", To: "beta-in"})
	err := Validate(bp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown component")
}

func TestValidate_BadEndpointFormat(t *testing.T) {
	bp := validBlueprint()
	bp.Connections[0].From = "alpha"
	assert.Error(t, Validate(bp))
}

func TestValidate_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Blueprint)
	}{
		{"empty id", func(bp *Blueprint) { bp.Components[0].ID = "" }},
		{"empty name", func(bp *Blueprint) { bp.Components[0].Name = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp := validBlueprint()
			tt.mutate(bp)
			assert.Error(t, Validate(bp))
		})
	}
}

func TestFirstPorts(t *testing.T) {
	c := Component{Inputs: DefaultInputs(), Outputs: DefaultOutputs()}
	assert.Equal(t, "in", c.FirstInput())
	assert.Equal(t, "out", c.FirstOutput())

	empty := Component{}
	assert.Equal(t, "", empty.FirstInput())
	assert.Equal(t, "", empty.FirstOutput())
}
