package ipc

// ErrorCode is the reason carried by an ERROR_REPLY message.
type ErrorCode uint32

const (
	ErrNone             ErrorCode = 0
	ErrInvalidMessage   ErrorCode = 1
	ErrInvalidSurface   ErrorCode = 2
	ErrInvalidBuffer    ErrorCode = 3
	ErrPermissionDenied ErrorCode = 4
	ErrResourceLimit    ErrorCode = 5
	ErrProtocolError    ErrorCode = 6
	ErrInternalError    ErrorCode = 7
	ErrValidationFailed ErrorCode = 8
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNone:
		return "none"
	case ErrInvalidMessage:
		return "invalid_message"
	case ErrInvalidSurface:
		return "invalid_surface"
	case ErrInvalidBuffer:
		return "invalid_buffer"
	case ErrPermissionDenied:
		return "permission_denied"
	case ErrResourceLimit:
		return "resource_limit"
	case ErrProtocolError:
		return "protocol_error"
	case ErrInternalError:
		return "internal_error"
	case ErrValidationFailed:
		return "validation_failed"
	default:
		return "unknown"
	}
}
