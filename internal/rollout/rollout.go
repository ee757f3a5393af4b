// Package rollout provides deterministic user bucketing for percentage rollouts.
// Users are assigned to a bucket (1-100) from a hash of the toggle key and user ID.
// This ensures:
//   - Same user always gets same result for a toggle (deterministic)
//   - Even distribution across buckets
//   - Safe progressive rollouts (increasing from 10% to 20% only adds users, never removes)
package rollout

// AnonymousUserID is bucketed when the context carries no user identity.
const AnonymousUserID = "anonymous"

// IsRolledOut determines if a user is included in a percentage rollout.
//
// Algorithm:
//  1. Hash(toggleKey + "-" + userID) → bucket (1-100)
//  2. If bucket <= percentage, user is included
//
// Special cases:
//   - percentage <= 0: always false
//   - percentage >= 100: always true
//
// Anonymous users share one bucket per toggle, so they are either all in or all out.
func IsRolledOut(h Hasher, toggleKey, userID string, percentage int) bool {
	if percentage >= 100 {
		return true
	}
	if percentage <= 0 {
		return false
	}
	if userID == "" {
		userID = AnonymousUserID
	}
	return Bucket(h, toggleKey, userID) <= percentage
}
