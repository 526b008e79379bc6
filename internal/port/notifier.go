package port

// Notifier surfaces short user-facing messages, the way a storefront shows toasts.
type Notifier interface {
	Success(message string)
	Error(message string)
}
