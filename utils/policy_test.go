package utils

import (
	"testing"

	"github.com/edu-safe/api-go/models"

	"github.com/stretchr/testify/assert"
)

func TestCanPerform(t *testing.T) {
	student := &UserClaims{UserID: "stu-1", Role: models.RoleStudent}
	teacher := &UserClaims{UserID: "tea-1", Role: models.RoleTeacher}
	admin := &UserClaims{UserID: "adm-1", Role: models.RoleAdmin}

	own := &models.Report{ReportedByID: "stu-1"}
	other := &models.Report{ReportedByID: "stu-2"}

	tests := []struct {
		name   string
		claims *UserClaims
		action string
		report *models.Report
		want   bool
	}{
		{"owner views own report", student, ActionViewReport, own, true},
		{"student cannot view another's report", student, ActionViewReport, other, false},
		{"teacher views any report", teacher, ActionViewReport, other, true},
		{"admin views any report", admin, ActionViewReport, other, true},

		{"student comments", student, ActionCommentReport, other, true},
		{"student votes", student, ActionVoteReport, other, true},

		{"student cannot list", student, ActionListReports, nil, false},
		{"student cannot view stats", student, ActionViewStats, nil, false},
		{"student cannot assign", student, ActionAssignReport, own, false},
		{"student cannot resolve own report", student, ActionResolveReport, own, false},
		{"student cannot change status", student, ActionSetStatus, own, false},

		{"teacher lists", teacher, ActionListReports, nil, true},
		{"teacher views stats", teacher, ActionViewStats, nil, true},
		{"teacher assigns", teacher, ActionAssignReport, other, true},
		{"teacher resolves", teacher, ActionResolveReport, other, true},
		{"admin changes status", admin, ActionSetStatus, other, true},

		{"nil claims denied", nil, ActionVoteReport, other, false},
		{"unknown action denied", teacher, "report:delete", other, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPerform(tt.claims, tt.action, tt.report))
		})
	}
}
