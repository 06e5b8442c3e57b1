package srs

import "time"

// TopicIntervals is the fixed review schedule for coarse topic-level
// material: days after completion at which each repetition falls.
var TopicIntervals = [...]int{1, 3, 7, 21, 45}

// NextTopicReview returns the date of the given repetition (0-based)
// after a topic was completed. Repetitions past the end of the schedule
// keep the final 45-day spacing.
func NextTopicReview(completedAt time.Time, repetition int) time.Time {
	if repetition < 0 {
		repetition = 0
	}
	base := Date(completedAt)
	if repetition < len(TopicIntervals) {
		return base.AddDate(0, 0, TopicIntervals[repetition])
	}
	last := TopicIntervals[len(TopicIntervals)-1]
	extra := repetition - (len(TopicIntervals) - 1)
	return base.AddDate(0, 0, last+extra*last)
}
