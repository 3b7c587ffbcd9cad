package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	assert.Equal(t, "[VALIDATION_ERROR] search query is required", ErrEmptyQuery.Error())

	wrapped := ErrSearchFailed.WithCause(errors.New("status 500"))
	assert.Equal(t, "[EXTERNAL_SERVICE_ERROR] search request failed: status 500", wrapped.Error())
}

func TestDomainError_IsMatchesWrappedSentinel(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("resolve address: %w", ErrSearchFailed.WithCause(cause))

	assert.ErrorIs(t, err, ErrSearchFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrEmptyQuery)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrCodePlatformCapability, CodeOf(fmt.Errorf("locate: %w", ErrLocationDenied)))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}

func TestNoticeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind NoticeKind
	}{
		{"validation", ErrEmptyWorkingList, NoticeInvalidInput},
		{"not found", ErrCandidateNotFound, NoticeInvalidInput},
		{"external", ErrSearchFailed.WithCause(errors.New("boom")), NoticeSearchFailed},
		{"location unsupported", ErrLocationUnsupported, NoticeLocationUnsupported},
		{"location denied", ErrLocationDenied.WithCause(errors.New("denied")), NoticeLocationFailed},
		{"unknown", errors.New("plain"), NoticeSearchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, NoticeFor(tt.err).Kind)
		})
	}

	assert.Equal(t, ErrEmptyWorkingList.Message, NoticeFor(ErrEmptyWorkingList).Message)
}
