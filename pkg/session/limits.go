package session

// ResourceLimits bounds how much of the daemon's state a single client may
// consume. create_surface and attach_buffer are rejected with
// resource_limit once the projected usage would exceed any of these.
type ResourceLimits struct {
	MaxSurfaces    int
	MaxTotalPixels uint64
	MaxSDCSBytes   uint64
	MaxShmBytes    uint64
}

// DefaultResourceLimits returns the per-client defaults from spec §4.4.
func DefaultResourceLimits() ResourceLimits {
	return ResourceLimits{
		MaxSurfaces:    64,
		MaxTotalPixels: 256 << 20,
		MaxSDCSBytes:   64 << 20,
		MaxShmBytes:    512 << 20,
	}
}

// Usage tracks a client's current resource consumption, updated atomically
// with registry mutations (create_surface, attach_buffer, destroy_surface).
type Usage struct {
	Surfaces   int
	TotalPixels uint64
	SDCSBytes   uint64
	ShmBytes    uint64
}

// WouldExceed reports whether adding the given deltas would push usage past
// limits.
func (u Usage) WouldExceed(limits ResourceLimits, addSurfaces int, addPixels, addSDCSBytes, addShmBytes uint64) bool {
	if u.Surfaces+addSurfaces > limits.MaxSurfaces {
		return true
	}
	if u.TotalPixels+addPixels > limits.MaxTotalPixels {
		return true
	}
	if u.SDCSBytes+addSDCSBytes > limits.MaxSDCSBytes {
		return true
	}
	if u.ShmBytes+addShmBytes > limits.MaxShmBytes {
		return true
	}
	return false
}
