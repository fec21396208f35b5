package outbox

const activityTrackedSchema = `{
  "type": "object",
  "title": "ActivityTracked",
  "properties": {
    "activity_id": {"type": "string"},
    "tenant_id": {"type": "string"},
    "user_id": {"type": "string"},
    "activity_type": {"type": "string"},
    "duration_min": {"type": "integer", "minimum": 1},
    "calories_burned": {"type": "integer", "minimum": 0},
    "started_at": {"type": "string", "format": "date-time"},
    "additional_metrics": {"type": "object", "additionalProperties": {"type": "number"}},
    "version": {"type": "string"}
  },
  "required": ["activity_id", "tenant_id", "user_id", "activity_type", "duration_min", "calories_burned", "started_at", "version"],
  "additionalProperties": false
}`
