package bindless

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptorIDRoundTrip(t *testing.T) {
	id := NewDescriptorID(KindImage, 12345, 77)
	assert.Equal(t, KindImage, id.Kind())
	assert.Equal(t, uint32(12345), id.Index())
	assert.Equal(t, uint16(77), id.Version())
}

func TestDescriptorIDPanicsOutOfRange(t *testing.T) {
	assert.Panics(t, func() { NewDescriptorID(KindBuffer, MaxSlotsPerTable, 0) })
	assert.Panics(t, func() { NewDescriptorID(KindBuffer, 0, MaxVersion) })
}

func TestDescriptorIDString(t *testing.T) {
	id := NewDescriptorID(KindSampler, 1, 2)
	assert.Equal(t, "sampler#1@v2", id.String())
}
