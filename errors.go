package pathway

import "errors"

var (
	// ErrCatalogLoad is returned when the subject catalog cannot be loaded.
	// The store settles to an empty catalog; browsing stays available.
	ErrCatalogLoad = errors.New("pathway: catalog load failed")

	// ErrCatalogNotReady is returned when generation is requested while the
	// catalog load is still outstanding.
	ErrCatalogNotReady = errors.New("pathway: catalog still loading, please wait")

	// ErrEmptyCatalog is returned when generation is requested with zero
	// subjects available. Rejected before any network call.
	ErrEmptyCatalog = errors.New("pathway: no subjects in catalog")

	// ErrEmptyOccupation is returned when the submitted occupation is empty
	// after trimming.
	ErrEmptyOccupation = errors.New("pathway: occupation is empty")

	// ErrMissingCredential is returned when no API key is configured for a
	// provider that requires one. Generation is disabled, not attempted.
	ErrMissingCredential = errors.New("pathway: missing API credential")

	// ErrLLMRequestFailed is returned when the AI request itself fails
	// (network, quota, auth).
	ErrLLMRequestFailed = errors.New("pathway: LLM request failed")

	// ErrNodeNotFound is returned when a node id does not exist on the
	// current roadmap.
	ErrNodeNotFound = errors.New("pathway: node not found on roadmap")

	// ErrNoRoadmap is returned when a node interaction is attempted before
	// any roadmap has been generated.
	ErrNoRoadmap = errors.New("pathway: no roadmap to operate on")
)
