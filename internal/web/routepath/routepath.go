// Package routepath stores canonical HTTP paths for the web frontend.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Health                = "/healthz"
	Activities            = "/activities"
	ActivitiesPrefix      = "/activities/"
	ActivityDetailPattern = ActivitiesPrefix + "{activityID}"
	ActivityOpenPattern   = ActivitiesPrefix + "{activityID}/open"
	ActivityIDParam       = "activityID"
)

// ActivityDetail returns the activity detail route.
func ActivityDetail(activityID string) string {
	return ActivitiesPrefix + escapeSegment(activityID)
}

// ActivityOpen returns the route a card posts to when clicked.
func ActivityOpen(activityID string) string {
	return ActivityDetail(activityID) + "/open"
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}
