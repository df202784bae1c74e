package vulkan

const (
	validationLayerName = "VK_LAYER_KHRONOS_validation"

	surfaceExtensionName               = "VK_KHR_surface"
	portabilityEnumerationExtension    = "VK_KHR_portability_enumeration"
	physicalDeviceProperties2Extension = "VK_KHR_get_physical_device_properties2"

	// instanceCreateEnumeratePortability is VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR.
	instanceCreateEnumeratePortability = 0x00000001

	engineName = "vkspin"
)
