package models

// CountResult is the outcome of counting badges on one page.
//
// A nil Cause means Count is the number of matching elements observed.
// A non-nil Cause marks the result as degraded: navigation, the readiness
// wait or DOM access failed, and Count is 0. Callers that only read Count
// cannot tell the two zero cases apart.
type CountResult struct {
	Count int
	Cause error
}

// Counted returns a confirmed result.
func Counted(n int) CountResult { return CountResult{Count: n} }

// Degraded returns a zero result that records why counting failed.
func Degraded(cause error) CountResult {
	return CountResult{Cause: NewCountError(ErrCodeScrapeDegraded, "page did not yield badge elements", cause)}
}

// Degraded reports whether the count fell back to zero because of a failure.
func (r CountResult) Degraded() bool { return r.Cause != nil }
