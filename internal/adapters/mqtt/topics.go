package mqtt

import "strings"

const devicePlaceholder = "{device_id}"

// extractDeviceID returns the second topic level, e.g. "phone-1" in nettrust/phone-1/scan.
func extractDeviceID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) >= 3 {
		return parts[1]
	}
	return ""
}

func formatTopic(pattern, deviceID string) string {
	return strings.ReplaceAll(pattern, devicePlaceholder, deviceID)
}
