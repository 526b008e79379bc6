package log

import "context"

type requestIDKey struct{}

func RequestIDFromContext(c context.Context) string {
	id, _ := c.Value(requestIDKey{}).(string)
	return id
}

func AttachRequestIDToContext(c context.Context, requestID string) context.Context {
	return context.WithValue(c, requestIDKey{}, requestID)
}
