// internal/wire/schema.go
package wire

// schemaURL names the embedded schema; it is never fetched.
const schemaURL = "https://schemas.contact-availability.local/widget-event.json"

// eventSchema validates the envelope strictly and the session substructures
// individually (see Decoder.session).
const eventSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["type"],
  "properties": {
    "type": {
      "enum": [
        "period-snapshot",
        "period-started",
        "period-ended",
        "widget-ready",
        "button-ready",
        "session-status",
        "conversation-started",
        "launch-chat"
      ]
    }
  },
  "$defs": {
    "routingResult": {
      "type": "object",
      "properties": {
        "success": { "type": "boolean" },
        "outcome": { "type": "string" }
      }
    },
    "agentInfo": {
      "type": "object",
      "properties": {
        "id":   { "type": "string" },
        "name": { "type": "string" }
      }
    }
  }
}`
