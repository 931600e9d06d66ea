package entities

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostError(t *testing.T) {
	cause := errors.New("tree access failed")
	err := NewHostError(HostErrorUnableToParse, cause)

	assert.Equal(t, "Unable to parse content.", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "unable_to_parse")

	wrapped := fmt.Errorf("start: %w", err)
	assert.True(t, IsHostError(wrapped, HostErrorUnableToParse))
	assert.False(t, IsHostError(wrapped, HostErrorNoContent))
	assert.False(t, IsHostError(cause, HostErrorUnableToParse))

	assert.Equal(t, "no_content: No content found on this page.", NewHostError(HostErrorNoContent, nil).Error())
	assert.Equal(t, "Presentation mode only works on Notion pages.", NewHostError(HostErrorWrongDomain, nil).Message)
}
