package constants

import (
	"time"
)

// Redis key layout: propdesk:{module}:{purpose}:{identifier}

const (
	CACHE_PREFIX = "propdesk"
)

// ================== EVENTS / AVAILABILITY ==================

const (
	CACHE_KEY_EVENT_DETAIL       = CACHE_PREFIX + ":events:detail:uuid:"       // + event-id
	CACHE_KEY_EVENT_AVAILABILITY = CACHE_PREFIX + ":events:availability:uuid:" // + event-id
)

const (
	TTL_EVENT_DETAIL       = 15 * time.Minute
	TTL_EVENT_AVAILABILITY = 30 * time.Second
)

// ================== ERROR PIPELINE ==================

const (
	CACHE_KEY_ERROR_REPORT = CACHE_PREFIX + ":errors:report:" // + error-id
	CACHE_KEY_FLASH        = CACHE_PREFIX + ":flash:"         // + flash-id
)

// ================== RATE LIMITING ==================

const (
	CACHE_KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + type:client
)

// ================== HELPER FUNCTIONS ==================

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

func BuildEventAvailabilityKey(eventID string) string {
	return CACHE_KEY_EVENT_AVAILABILITY + eventID
}

func BuildErrorReportKey(errorID string) string {
	return CACHE_KEY_ERROR_REPORT + errorID
}

func BuildFlashKey(flashID string) string {
	return CACHE_KEY_FLASH + flashID
}
