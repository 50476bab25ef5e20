package ingestion

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// ResolveIdentity returns the stable identity token for a feedback item: the
// source system's own id when it provides a non-empty one, otherwise a
// deterministic content fingerprint. Downstream code treats the token as
// opaque.
func ResolveIdentity(nativeID, sourceTag, author, content, createdRaw string) string {
	if id := strings.TrimSpace(nativeID); id != "" {
		return id
	}
	return Fingerprint(sourceTag, author, content, createdRaw)
}

// Fingerprint derives a fallback identity from the fixed tuple of channel
// tag, author, content and the raw timestamp string. Re-running it on
// byte-identical input yields the identical token, so re-ingestion of a
// source with no native ids does not create duplicate rows.
func Fingerprint(sourceTag, author, content, createdRaw string) string {
	raw := fmt.Sprintf("%s|%s|%s|%s", sourceTag, author, content, createdRaw)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// truncate caps s at n bytes. Fingerprint inputs bound long review bodies so
// the token does not depend on trailing text past the cap.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
