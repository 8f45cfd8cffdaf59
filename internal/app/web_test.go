package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/visorlabs/headtrack/internal/rotation"
	"github.com/visorlabs/headtrack/internal/tracker"
)

func TestPoseStateTracksTopicsSeparately(t *testing.T) {
	state := &poseState{}

	_, _, havePose, havePredicted := state.get()
	assert.False(t, havePose)
	assert.False(t, havePredicted)

	// Predicted-only traffic must not make the current pose look available:
	// the snapshot API would serve a zero-valued pose.
	predicted := tracker.NewPose(rotation.FromEuler(0.5, 0, 0), 10)
	state.set(predicted, true)

	_, gotPredicted, havePose, havePredicted := state.get()
	assert.False(t, havePose)
	assert.True(t, havePredicted)
	assert.Equal(t, predicted, gotPredicted)

	pose := tracker.NewPose(rotation.FromEuler(0.3, 0, 0), 5)
	state.set(pose, false)

	gotPose, gotPredicted, havePose, havePredicted := state.get()
	assert.True(t, havePose)
	assert.True(t, havePredicted)
	assert.Equal(t, pose, gotPose)
	assert.Equal(t, predicted, gotPredicted)
}
