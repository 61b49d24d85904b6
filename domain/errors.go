package domain

import "fmt"

// ResolutionError reports that an expected on-chain shape was not found:
// the contract is uninitialized, the object is not of the expected kind, or
// the upgrade capability is absent. Not retried locally.
type ResolutionError struct {
	ObjectID ObjectID
	Reason   string
}

func (e *ResolutionError) Error() string {
	if e.ObjectID == "" {
		return fmt.Sprintf("resolution failed: %s", e.Reason)
	}

	return fmt.Sprintf("resolution failed for %s: %s", e.ObjectID, e.Reason)
}

// ValidationError reports an invalid combination of caller inputs. Raised
// before any network or assembly work for the offending step.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// NotFoundError reports that a feed has no registered on-chain price-info
// object. The caller is expected to create the feed first.
type NotFoundError struct {
	FeedID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("price feed %s is not registered on chain", e.FeedID)
}
