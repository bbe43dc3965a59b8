package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyExerciseName(t *testing.T) {
	cases := []struct {
		title string
		want  Classification
	}{
		{"Back Squat", ClassSquat},
		{"BENCH PRESS", ClassBench},
		{"Conventional Deadlift", ClassDeadlift},
		{"1km Run", ClassRun},
		{"SkiErg 500m", ClassSkiErg},
		{"Sled Push 4x25m", ClassSledPush},
		{"Sled Pull", ClassSledPull},
		{"Burpee Broad Jump", ClassBurpee},
		{"Barbell Row", ClassRow},
		{"Farmers Carry", ClassFarmers},
		{"Walking Lunge", ClassLunge},
		{"Wall Ball Shots", ClassWallBall},
		{"벤치 프레스", ClassBench},
		{"데드리프트", ClassDeadlift},
		{"고블릿 스쿼트", ClassSquat},
		{"러닝 10분", ClassRun},
		{"월볼", ClassWallBall},
		{"Bicep Curl", ClassUntagged},
		{"", ClassUntagged},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyExerciseName(tc.title), "title %q", tc.title)
	}

	// Keyword order is significant: bench outranks squat, so an ambiguous
	// title like "Bench Squat" tags as bench press.
	assert.Equal(t, ClassBench, ClassifyExerciseName("Bench Squat"))
}
