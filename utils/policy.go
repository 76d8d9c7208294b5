package utils

import (
	"github.com/edu-safe/api-go/models"
)

// Report actions checked through CanPerform. Every handler consults this
// one function instead of repeating role comparisons inline.
const (
	ActionViewReport    = "report:view"
	ActionCommentReport = "report:comment"
	ActionVoteReport    = "report:vote"
	ActionListReports   = "report:list"
	ActionAssignReport  = "report:assign"
	ActionResolveReport = "report:resolve"
	ActionSetStatus     = "report:set-status"
	ActionViewStats     = "report:stats"
)

func isStaff(claims *UserClaims) bool {
	return claims.Role == models.RoleTeacher || claims.Role == models.RoleAdmin
}

// CanPerform is the authorization policy for the report surface. The report
// argument may be nil for collection-level actions (list, stats).
func CanPerform(claims *UserClaims, action string, report *models.Report) bool {
	if claims == nil {
		return false
	}

	switch action {
	case ActionViewReport:
		// owners see their own reports, staff see everything
		if isStaff(claims) {
			return true
		}
		return report != nil && report.ReportedByID == claims.UserID

	case ActionCommentReport, ActionVoteReport:
		// any authenticated identity
		return true

	case ActionListReports, ActionViewStats,
		ActionAssignReport, ActionResolveReport, ActionSetStatus:
		return isStaff(claims)
	}

	return false
}
