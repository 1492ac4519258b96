package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/malkhana/internal/ledgererr"
)

func TestStaleCutoff(t *testing.T) {
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC)

	cutoff := StaleCutoff(now, 24*time.Hour)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), cutoff)

	assert.Equal(t, now, StaleCutoff(now, 0))
	assert.Equal(t, now, StaleCutoff(now, -time.Hour))

	assert.True(t, IsStale(now.Add(-25*time.Hour), cutoff))
	assert.False(t, IsStale(now.Add(-1*time.Hour), cutoff))
	assert.True(t, IsStale(cutoff, cutoff))
}

func TestPendingCaseMessage(t *testing.T) {
	assert.Equal(t, "Case 123/24 has been pending for more than 24 hours", PendingCaseMessage("123/24", 24*time.Hour))
	assert.Equal(t, "Case 9/24 has been pending for more than 3 days", PendingCaseMessage("9/24", 72*time.Hour))
	assert.Equal(t, "Case 9/24 has been pending for more than 6 hours", PendingCaseMessage("9/24", 6*time.Hour))
	assert.Equal(t, "Case 9/24 has been pending for more than 90 minutes", PendingCaseMessage("9/24", 90*time.Minute))
	assert.Equal(t, "Case 9/24 has been pending for more than 1 minute", PendingCaseMessage("9/24", time.Minute))
	assert.Equal(t, "Case 9/24 has been pending for more than 1m30s", PendingCaseMessage("9/24", 90*time.Second))
	assert.Equal(t, "Case 9/24 has been pending for more than 0s", PendingCaseMessage("9/24", 0))
}

func TestCanMarkRead(t *testing.T) {
	r := CanMarkRead(MarkReadContext{NotificationID: "N-1", Exists: true, OwnerID: "U-1", ActorID: "U-1"})
	assert.True(t, r.Allowed)

	r = CanMarkRead(MarkReadContext{NotificationID: "N-1", Exists: false})
	assert.False(t, r.Allowed)
	assert.Equal(t, ledgererr.CodeNotFound, r.Code)

	r = CanMarkRead(MarkReadContext{NotificationID: "N-1", Exists: true, OwnerID: "U-1", ActorID: "U-2"})
	assert.False(t, r.Allowed)
	assert.Equal(t, ledgererr.CodeForbidden, r.Code)
}
