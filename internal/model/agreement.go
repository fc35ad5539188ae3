package model

// Agreement describes how closely the sampling estimate matches the
// iterative fixed point, judged by their total variation distance.
//
// The sampling estimator is a Monte Carlo estimate, so some disagreement is
// expected; its size shrinks roughly with the square root of the sample count.
type Agreement int

const (
	// AgreementUnknown means at least one estimator result is missing.
	AgreementUnknown Agreement = iota

	// AgreementWeak means the distributions differ by more than
	// WeakAgreementThreshold. Usually the sample count is too small.
	AgreementWeak

	// AgreementModerate means the distance lies between the strong and weak
	// thresholds.
	AgreementModerate

	// AgreementStrong means the distance is at most StrongAgreementThreshold.
	AgreementStrong
)

const (
	// StrongAgreementThreshold is the largest total variation distance
	// still considered strong agreement.
	StrongAgreementThreshold = 0.02

	// WeakAgreementThreshold is the total variation distance above which
	// agreement is weak.
	WeakAgreementThreshold = 0.1
)

// ClassifyAgreement maps a total variation distance to an Agreement level.
func ClassifyAgreement(totalVariation float64) Agreement {
	switch {
	case totalVariation < 0:
		return AgreementUnknown
	case totalVariation <= StrongAgreementThreshold:
		return AgreementStrong
	case totalVariation <= WeakAgreementThreshold:
		return AgreementModerate
	default:
		return AgreementWeak
	}
}

// String returns a human-readable representation of the agreement level.
func (a Agreement) String() string {
	switch a {
	case AgreementWeak:
		return "WEAK"
	case AgreementModerate:
		return "MODERATE"
	case AgreementStrong:
		return "STRONG"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON output.
func (a Agreement) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
