package stats

import "hostbook/internal/domain"

// Report bundles every aggregate the statistics page shows.
type Report struct {
	Summary            Summary        `json:"summary"`
	MonthlyRevenue     []MonthRevenue `json:"monthlyRevenue"`
	LengthDistribution []LengthBucket `json:"lengthDistribution"`
}

func Build(s domain.Snapshot) Report {
	return Report{
		Summary:            Summarize(s.Bookings, s.GuestCount),
		MonthlyRevenue:     MonthlyRevenue(s.Bookings),
		LengthDistribution: LengthDistribution(s.Bookings),
	}
}
