package request

// NotificationSink surfaces messages to the end user. Calls are fire and
// forget; implementations must not block the caller for long.
type NotificationSink interface {
	NotifySuccess(title, message string)
	NotifyError(title, message string)
	NotifyWarning(title, message string)
	NotifyInfo(title, message string)
}

// DiscardSink drops every notification.
type DiscardSink struct{}

func (DiscardSink) NotifySuccess(string, string) {}
func (DiscardSink) NotifyError(string, string)   {}
func (DiscardSink) NotifyWarning(string, string) {}
func (DiscardSink) NotifyInfo(string, string)    {}
