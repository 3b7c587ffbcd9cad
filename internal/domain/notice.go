package domain

import "errors"

// NoticeKind classifies a user-visible notice.
type NoticeKind string

const (
	NoticeInvalidInput        NoticeKind = "invalid_input"
	NoticeSearchFailed        NoticeKind = "search_failed"
	NoticeNoResults           NoticeKind = "no_results"
	NoticeNoNearby            NoticeKind = "no_nearby_restaurants"
	NoticeLocationFailed      NoticeKind = "location_failed"
	NoticeLocationUnsupported NoticeKind = "location_unsupported"
)

// Notice is a blocking message shown to the user.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

var (
	NoticeNoResultsFound   = Notice{Kind: NoticeNoResults, Message: "No results found."}
	NoticeNoNearbyFound    = Notice{Kind: NoticeNoNearby, Message: "No restaurants found nearby."}
	noticeSearchError      = Notice{Kind: NoticeSearchFailed, Message: "An error occurred while searching."}
	noticeLocationError    = Notice{Kind: NoticeLocationFailed, Message: "Could not get your location."}
	noticeLocationDisabled = Notice{Kind: NoticeLocationUnsupported, Message: "Location is not supported on this device."}
)

// NoticeFor maps an error to the notice a user should see for it.
func NoticeFor(err error) Notice {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return noticeSearchError
	}

	switch domainErr.Code {
	case ErrCodeValidation, ErrCodeNotFound:
		return Notice{Kind: NoticeInvalidInput, Message: domainErr.Message}
	case ErrCodePlatformCapability:
		if errors.Is(err, ErrLocationUnsupported) {
			return noticeLocationDisabled
		}
		return noticeLocationError
	default:
		return noticeSearchError
	}
}
