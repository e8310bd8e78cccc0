package tracking

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// NewTrackingID mints the identity for one outbound message: a short hash
// of (template, recipient, time) joined to the raw millisecond timestamp.
// The hash is for human-scannable uniqueness, not authentication; a random
// salt is folded in so two sends to the same recipient in the same
// millisecond still get distinct ids. Never rejects input; recipients are
// external data.
func NewTrackingID(templateName, recipient string) string {
	now := time.Now()

	var salt [4]byte
	rand.Read(salt[:])

	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%d|%x", templateName, recipient, now.UnixNano(), salt))
	return fmt.Sprintf("%s-%d", hex.EncodeToString(sum[:4]), now.UnixMilli())
}
