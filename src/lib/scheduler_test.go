package lib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreateCronJob(t *testing.T) {
	id, err := CreateCronJob(func() {}, time.Minute)
	assert.Nil(t, err)
	assert.NotNil(t, id)

	sched, err := GetScheduler()
	assert.Nil(t, err)
	assert.NotEmpty(t, sched.Jobs())
}
