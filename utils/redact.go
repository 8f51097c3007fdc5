package utils

// MaskToken shortens an opaque purchase token or receipt for logging.
// Vendor tokens must never reach the logs in full.
func MaskToken(token string) string {
	const keep = 4
	if len(token) <= keep*2 {
		return "***"
	}
	return token[:keep] + "..." + token[len(token)-keep:]
}
