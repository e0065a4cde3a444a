package models

import (
	"time"

	"github.com/pkg/errors"
)

// JobConfig is the immutable configuration of one issue-answering job.
// It is constructed once at job creation and never mutated afterwards.
type JobConfig struct {
	Nation           string
	ChannelID        string
	OwnerID          string
	BetweenIssues    time.Duration
	FirstIssueOffset time.Duration
}

// NewJobConfig validates and builds a job configuration.
// issuesPerDay must be between 1 and 4, offsetHours must be
// non-negative and strictly less than the resulting interval.
func NewJobConfig(nation, channelID, ownerID string, issuesPerDay int, offsetHours float64) (JobConfig, error) {
	if nation == "" {
		return JobConfig{}, errors.New("nation must not be empty")
	}
	if channelID == "" {
		return JobConfig{}, errors.New("channel id must not be empty")
	}
	if issuesPerDay < 1 || issuesPerDay > 4 {
		return JobConfig{}, errors.Errorf("issues per day must be between 1 and 4, got %d", issuesPerDay)
	}
	if offsetHours < 0 {
		return JobConfig{}, errors.New("first issue offset must not be negative")
	}

	between := 24 * time.Hour / time.Duration(issuesPerDay)
	offset := time.Duration(offsetHours * float64(time.Hour))
	if offset >= between {
		return JobConfig{}, errors.Errorf(
			"first issue offset %s must be less than the time between issues %s", offset, between)
	}

	return JobConfig{
		Nation:           nation,
		ChannelID:        channelID,
		OwnerID:          ownerID,
		BetweenIssues:    between,
		FirstIssueOffset: offset,
	}, nil
}
