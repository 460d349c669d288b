package tracing

// TraceparentHeader is the W3C trace context header name, reused as the kafka
// header key on relayed events.
const TraceparentHeader = "traceparent"
