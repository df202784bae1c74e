package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/vkspin/engine/core"
)

func TestNewErrorKinds(t *testing.T) {
	tests := []struct {
		result vk.Result
		want   core.ErrorKind
	}{
		{vk.ErrorOutOfDate, core.KindSwapchainStale},
		{vk.Suboptimal, core.KindSwapchainStale},
		{vk.Timeout, core.KindTimeout},
		{vk.ErrorDeviceLost, core.KindDeviceLost},
		{vk.ErrorOutOfDeviceMemory, core.KindAllocation},
		{vk.ErrorLayerNotPresent, core.KindCapabilityMissing},
		{vk.ErrorInitializationFailed, core.KindCreation},
	}
	for _, tt := range tests {
		t.Run(VulkanResultString(tt.result), func(t *testing.T) {
			err := NewError(core.KindCreation, "vkCreateThing", tt.result)
			require.Equal(t, tt.want, err.Kind)
			require.Contains(t, err.Error(), VulkanResultString(tt.result))
		})
	}
}

func TestCheck(t *testing.T) {
	require.NoError(t, check(core.KindFrame, "vkQueueSubmit", vk.Success))
	require.ErrorIs(t, check(core.KindFrame, "vkQueueSubmit", vk.ErrorDeviceLost), core.ErrDeviceLost)
}

func TestStrings(t *testing.T) {
	require.Equal(t, "VK_LAYER_KHRONOS_validation\x00", VulkanSafeString("VK_LAYER_KHRONOS_validation"))
	require.Equal(t, "a\x00", VulkanSafeString("a\x00"))
	require.Equal(t, "\x00", VulkanSafeString(""))

	in := []string{"a", "b\x00"}
	require.Equal(t, []string{"a\x00", "b\x00"}, VulkanSafeStrings(in))
	require.Equal(t, "a", in[0], "input is not modified")

	var name [32]byte
	copy(name[:], "VK_KHR_swapchain")
	require.Equal(t, "VK_KHR_swapchain", vk.ToString(name[:]))
}
