package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckInDeadlineBoundaryInclusive(t *testing.T) {
	deadline := time.Now()

	// 恰等於期限視為未逾時，與排程的 check_in_deadline < now 一致
	assert.False(t, checkInDeadlinePassed(deadline, deadline))
	assert.False(t, checkInDeadlinePassed(deadline.Add(-time.Second), deadline))
	assert.True(t, checkInDeadlinePassed(deadline.Add(time.Nanosecond), deadline))
	assert.True(t, checkInDeadlinePassed(deadline.Add(time.Minute), deadline))
}
