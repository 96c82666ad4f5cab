package store

import "errors"

var (
	// ErrAlreadyEnded means the conditional verification update matched no
	// active row: another cycle already ended the prediction.
	ErrAlreadyEnded = errors.New("prediction already ended")

	// ErrDuplicateNews means an article with the same source_url already exists
	ErrDuplicateNews = errors.New("news article already exists")

	// ErrStatsAlreadyApplied means the voter's stats were already counted for
	// this prediction; the claim flag on the vote row was consumed earlier.
	ErrStatsAlreadyApplied = errors.New("stats already applied for this vote")
)
