package manifest

// Classify decides whether a record is eligible for backup. First match
// wins: Partial records are Corrupt, an unsettled install is Incomplete,
// an excluded id is Excluded, everything else is FullyInstalled.
//
// Classification is pure: it inspects the record and the exclusion set
// and touches nothing else.
func Classify(rec Record, excluded map[string]struct{}) Classification {
	switch r := rec.(type) {
	case Partial:
		return Classification{Record: r, Eligible: false, Reason: Corrupt}
	case Complete:
		if r.StateFlags != StateFullyInstalled {
			return Classification{Record: r, Eligible: false, Reason: Incomplete}
		}
		if _, ok := excluded[r.ID]; ok {
			return Classification{Record: r, Eligible: false, Reason: Excluded}
		}
		return Classification{Record: r, Eligible: true, Reason: FullyInstalled}
	default:
		// Record is a closed interface; only the two variants above exist.
		return Classification{Record: rec, Eligible: false, Reason: Corrupt}
	}
}
