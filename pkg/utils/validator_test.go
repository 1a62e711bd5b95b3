package utils

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishInput struct {
	Name    string `validate:"required,min=1,max=128"`
	Version string `validate:"required,semver"`
	ModelID string `validate:"required,uuid"`
}

func TestValidateStruct_Valid(t *testing.T) {
	err := ValidateStruct(&publishInput{
		Name:    "creditdefault",
		Version: "1.0.0",
		ModelID: "3b33bb27-3b8e-4b2a-a0b0-55f2d2e0c7c1",
	})
	assert.Nil(t, err)
}

func TestValidateStruct_CollectsFieldErrors(t *testing.T) {
	err := ValidateStruct(&publishInput{Version: "one-point-oh", ModelID: "not-a-uuid"})
	require.NotNil(t, err)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())

	meta := err.Metadata()
	assert.Contains(t, meta, "name")
	assert.Contains(t, meta, "version")
	assert.Contains(t, meta, "model_id")
	assert.Equal(t, "must be a semantic version (MAJOR.MINOR.PATCH)", meta["version"])
}

func TestValidateStruct_Semver(t *testing.T) {
	for _, version := range []string{"1.0.0", "0.2.10", "2.0.0-rc.1"} {
		err := ValidateStruct(&publishInput{
			Name: "svc", Version: version, ModelID: "3b33bb27-3b8e-4b2a-a0b0-55f2d2e0c7c1",
		})
		assert.Nil(t, err, "version %s should be accepted", version)
	}
	for _, version := range []string{"1.0", "v1.0.0", "1.0.0.0", "latest"} {
		err := ValidateStruct(&publishInput{
			Name: "svc", Version: version, ModelID: "3b33bb27-3b8e-4b2a-a0b0-55f2d2e0c7c1",
		})
		assert.NotNil(t, err, "version %s should be rejected", version)
	}
}
