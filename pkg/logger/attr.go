package logger

import "log/slog"

// Error records err under "error". A nil error yields an empty Attr, which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Owner records the credential owner under "owner".
func Owner(id string) slog.Attr {
	return slog.String("owner", id)
}

// Label records the binding label under "label".
func Label(label string) slog.Attr {
	return slog.String("label", label)
}

// BindingID records the binding identifier under "binding_id".
func BindingID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("binding_id", id)
}

// BatchID records the backup code batch under "batch_id".
func BatchID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("batch_id", id)
}

// Status records a lifecycle state under "status".
func Status(s string) slog.Attr {
	return slog.String("status", s)
}

// Component records the component name under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}
