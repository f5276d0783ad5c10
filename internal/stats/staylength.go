package stats

import "hostbook/internal/domain"

// Bucket labels, in display order.
const (
	BucketOneDay      = "1 day"
	BucketTwoToThree  = "2-3 days"
	BucketFourToSeven = "4-7 days"
	BucketEightTo14   = "8-14 days"
	BucketFifteenPlus = "15+ days"
)

var bucketLabels = [...]string{
	BucketOneDay,
	BucketTwoToThree,
	BucketFourToSeven,
	BucketEightTo14,
	BucketFifteenPlus,
}

type LengthBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// bucketIndex maps a stay length to its position in bucketLabels.
// Zero and negative lengths land in "1 day".
func bucketIndex(days int) int {
	switch {
	case days <= 1:
		return 0
	case days <= 3:
		return 1
	case days <= 7:
		return 2
	case days <= 14:
		return 3
	default:
		return 4
	}
}

// BucketFor returns the label of the bucket a stay of the given length falls in.
func BucketFor(days int) string { return bucketLabels[bucketIndex(days)] }

// LengthDistribution counts bookings per stay-length bucket. The result always
// has all five buckets in fixed order, zero counts included.
func LengthDistribution(bookings []domain.Booking) []LengthBucket {
	var counts [len(bucketLabels)]int
	for _, b := range bookings {
		counts[bucketIndex(StayLength(b))]++
	}
	out := make([]LengthBucket, len(bucketLabels))
	for i, l := range bucketLabels {
		out[i] = LengthBucket{Label: l, Count: counts[i]}
	}
	return out
}
