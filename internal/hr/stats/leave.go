package stats

import (
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
)

// LeaveCounts groups leave requests by status and type.
type LeaveCounts struct {
	Total    int                          `json:"total"`
	Pending  int                          `json:"pending"`
	Approved int                          `json:"approved"`
	Rejected int                          `json:"rejected"`
	ByType   map[repository.LeaveType]int `json:"byType"`
}

// CountLeave tallies requests.
func CountLeave(requests []repository.LeaveRequest) LeaveCounts {
	c := LeaveCounts{ByType: make(map[repository.LeaveType]int)}
	for _, r := range requests {
		c.Total++
		c.ByType[r.Type]++
		switch r.Status {
		case repository.LeavePending:
			c.Pending++
		case repository.LeaveApproved:
			c.Approved++
		case repository.LeaveRejected:
			c.Rejected++
		}
	}
	return c
}

// OnLeave returns the approved requests covering date.
func OnLeave(requests []repository.LeaveRequest, date string) []repository.LeaveRequest {
	var out []repository.LeaveRequest
	for _, r := range requests {
		if r.Status == repository.LeaveApproved && r.Covers(date) {
			out = append(out, r)
		}
	}
	return out
}
