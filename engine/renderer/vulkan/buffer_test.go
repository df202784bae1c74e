package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkspin/engine/core"
	"github.com/stretchr/testify/require"
)

func memoryProperties(flags ...vk.MemoryPropertyFlagBits) vk.PhysicalDeviceMemoryProperties {
	props := vk.PhysicalDeviceMemoryProperties{MemoryTypeCount: uint32(len(flags))}
	for i, f := range flags {
		props.MemoryTypes[i].PropertyFlags = vk.MemoryPropertyFlags(f)
	}
	return props
}

func TestFindMemoryIndex(t *testing.T) {
	hostVisible := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
	hostCoherent := vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
	deviceLocal := vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)

	props := memoryProperties(
		vk.MemoryPropertyDeviceLocalBit,
		vk.MemoryPropertyHostVisibleBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit,
	)

	tests := []struct {
		name   string
		filter uint32
		flags  vk.MemoryPropertyFlags
		want   uint32
	}{
		{"device local", 0b1111, deviceLocal, 0},
		{"first match wins", 0b1111, hostVisible, 1},
		{"conjunction of flags", 0b1111, hostVisible | hostCoherent, 2},
		{"filter skips earlier types", 0b1000, hostVisible | hostCoherent, 3},
		{"no flags takes first allowed", 0b0100, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, err := findMemoryIndex(props, tt.filter, tt.flags)
			require.NoError(t, err)
			require.Equal(t, tt.want, index)
		})
	}
}

func TestFindMemoryIndexFails(t *testing.T) {
	props := memoryProperties(vk.MemoryPropertyDeviceLocalBit, vk.MemoryPropertyHostVisibleBit)

	for _, flags := range []vk.MemoryPropertyFlags{0, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)} {
		_, err := findMemoryIndex(props, 0, flags)
		require.ErrorIs(t, err, core.ErrAllocation)
	}

	_, err := findMemoryIndex(props, 0b01, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit))
	require.Error(t, err)
	require.Equal(t, core.KindAllocation, core.KindOf(err))

	// Bits past the advertised type count never match.
	_, err = findMemoryIndex(props, 0b100, 0)
	require.ErrorIs(t, err, core.ErrAllocation)
}
