package syncapi

import (
	"testing"
	"time"

	"github.com/riskibarqy/golf-league/internal/domain/round"
	"github.com/stretchr/testify/assert"
)

func TestRoundFromTranslatesCourseAndTruncatesTime(t *testing.T) {
	t.Parallel()

	serverID := int64(900)
	local := round.Round{
		ID:          4,
		ServerID:    &serverID,
		UserID:      7,
		CourseID:    2,
		PlayedAt:    time.Date(2024, 4, 2, 9, 15, 30, 987654321, time.FixedZone("CET", 3600)),
		HoleStrokes: map[int]int{1: 5},
	}

	payload := RoundFrom(local, 31)
	assert.Equal(t, int64(4), payload.ClientID)
	assert.Equal(t, int64(900), payload.ID)
	assert.Equal(t, int64(31), payload.CourseID)
	assert.Equal(t, time.Date(2024, 4, 2, 8, 15, 30, 0, time.UTC), payload.Date)

	payload.Scores[1] = 9
	assert.Equal(t, 5, local.HoleStrokes[1], "payload must not alias local scores")
}
