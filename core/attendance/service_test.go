package attendance_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/scola/core/attendance"
	"github.com/trezcool/scola/core/user"
	"github.com/trezcool/scola/storage/kvrepos"
	"github.com/trezcool/scola/tests"
)

const day = "2026-10-16"

func setup(t *testing.T) (*attendance.Service, user.Repository) {
	validate, _ := testutil.NewValidator()
	store := testutil.NewStore(t)
	usrRepo := kvrepos.NewUserRepository(store)
	svc := attendance.NewService(kvrepos.NewAttendanceRepository(store), user.NewService(usrRepo, validate), validate)
	return svc, usrRepo
}

func TestService_Mark(t *testing.T) {
	svc, usrRepo := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)
	alice := testutil.CreateStudent(t, usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")

	tests := []struct {
		name    string
		mark    attendance.Mark
		wantErr string
	}{
		{name: "invalid status", mark: attendance.Mark{StudentID: alice.ID, Date: day, Status: "sick"}, wantErr: "any"},
		{name: "invalid date", mark: attendance.Mark{StudentID: alice.ID, Date: "16/10/2026", Status: attendance.StatusPresent}, wantErr: "any"},
		{name: "unknown student", mark: attendance.Mark{StudentID: "lol", Date: day, Status: attendance.StatusPresent}, wantErr: "student not found"},
		{name: "not a student", mark: attendance.Mark{StudentID: teacher.ID, Date: day, Status: attendance.StatusPresent}, wantErr: "student not found"},
		{name: "marked", mark: attendance.Mark{StudentID: alice.ID, Date: day, Status: attendance.StatusPresent}},
		{name: "re-marked", mark: attendance.Mark{StudentID: alice.ID, Date: day, Status: attendance.StatusLate}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := svc.Mark(ctx, teacher, tt.mark)
			switch tt.wantErr {
			case "":
				require.NoError(t, err)
				assert.Equal(t, "Alice Johnson", rec.StudentName)
				assert.Equal(t, "STU001", rec.StudentNumber)
				assert.Equal(t, "Mr. Smith", rec.MarkedBy)
				assert.Equal(t, tt.mark.Status, rec.Status)
			case "any":
				assert.Error(t, err)
			default:
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}

	records, err := svc.ForDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, attendance.StatusLate, records[0].Status)

	_, err = svc.ForDate(ctx, "yesterday")
	assert.Error(t, err)
}

func TestService_RosterAndStats(t *testing.T) {
	svc, usrRepo := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)
	alice := testutil.CreateStudent(t, usrRepo, "Alice Johnson", "alice@test.cd", "STU001", "Grade 10")
	bob := testutil.CreateStudent(t, usrRepo, "Bob Smith", "bob@test.cd", "STU002", "Grade 10")
	carol := testutil.CreateStudent(t, usrRepo, "Carol Davis", "carol@test.cd", "STU003", "Grade 10")
	dan := testutil.CreateStudent(t, usrRepo, "Dan Lee", "dan@test.cd", "", "Grade 11")

	for id, status := range map[string]string{alice.ID: attendance.StatusPresent, bob.ID: attendance.StatusAbsent, dan.ID: attendance.StatusLate} {
		_, err := svc.Mark(ctx, teacher, attendance.Mark{StudentID: id, Date: day, Status: status})
		require.NoError(t, err)
	}
	_, err := svc.Mark(ctx, teacher, attendance.Mark{StudentID: carol.ID, Date: "2026-10-15", Status: attendance.StatusPresent})
	require.NoError(t, err)

	roster, err := svc.Roster(ctx, day, "Grade 10")
	require.NoError(t, err)
	assert.Equal(t, []attendance.RosterEntry{
		{StudentID: alice.ID, StudentName: "Alice Johnson", StudentNumber: "STU001", Grade: "Grade 10", Status: attendance.StatusPresent},
		{StudentID: bob.ID, StudentName: "Bob Smith", StudentNumber: "STU002", Grade: "Grade 10", Status: attendance.StatusAbsent},
		{StudentID: carol.ID, StudentName: "Carol Davis", StudentNumber: "STU003", Grade: "Grade 10"},
	}, roster)

	stats, err := svc.Stats(ctx, day, "Grade 10")
	require.NoError(t, err)
	assert.Equal(t, attendance.Stats{Date: day, Present: 1, Absent: 1, Total: 3}, stats)

	stats, err = svc.Stats(ctx, day, "")
	require.NoError(t, err)
	assert.Equal(t, attendance.Stats{Date: day, Present: 1, Absent: 1, Late: 1, Total: 4}, stats)
}

func TestService_ExportCSV(t *testing.T) {
	svc, usrRepo := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateUser(t, usrRepo, "Mr. Smith", "teacher@test.cd", "", user.RoleTeacher, true)
	dan := testutil.CreateStudent(t, usrRepo, "Dan Lee", "dan@test.cd", "", "Grade 11")
	_, err := svc.Mark(ctx, teacher, attendance.Mark{StudentID: dan.ID, Date: day, Status: attendance.StatusLate})
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	require.NoError(t, svc.ExportCSV(ctx, day, buf))
	assert.Equal(t, "Student Name,Student Number,Status,Date,Marked By\nDan Lee,N/A,late,2026-10-16,Mr. Smith\n", buf.String())
	assert.Equal(t, "attendance-2026-10-16.csv", attendance.ExportFilename(day))
}
