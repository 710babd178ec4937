package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateReferenceNumber produces a globally unique, human-shareable
// order reference such as "CO-20260831-9F2C41AB". The date prefix keeps
// references sortable at the counter; the random suffix keeps them
// unguessable and never reused.
func GenerateReferenceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("CO-%s-%s", now.Format("20060102"), suffix)
}
