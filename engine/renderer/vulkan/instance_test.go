package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceExtensions(t *testing.T) {
	window := []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}

	got := instanceExtensions(window, "linux", false)
	require.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}, got)

	got = instanceExtensions(window, "linux", true)
	assert.Contains(t, got, vk.ExtDebugReportExtensionName)

	got = instanceExtensions([]string{"VK_EXT_metal_surface"}, "darwin", false)
	require.Equal(t, []string{
		"VK_KHR_surface",
		"VK_EXT_metal_surface",
		"VK_KHR_portability_enumeration",
		"VK_KHR_get_physical_device_properties2",
	}, got)
}

func TestMissingNames(t *testing.T) {
	available := []string{"VK_LAYER_LUNARG_api_dump", "VK_LAYER_KHRONOS_validation"}

	assert.Empty(t, missingNames([]string{validationLayerName}, available))
	assert.Equal(t, []string{validationLayerName}, missingNames([]string{validationLayerName}, nil))
	assert.Equal(t, []string{"b"}, missingNames([]string{"a", "b"}, []string{"a"}))
}
